package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/vsinha/bomplanner/pkg/infrastructure/events"
	"github.com/vsinha/bomplanner/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/bomplanner/pkg/interfaces/cli/output"
	"github.com/vsinha/bomplanner/pkg/logger"
)

// MRPOptions holds the flags of the mrp command
type MRPOptions struct {
	StepsFile string
	Strict    bool
	ShowTree  bool
	Explode   bool
	Check     bool
}

// MRPCommand replays insertion steps from CSV and prints the MRP results
type MRPCommand struct {
	config  Config
	options MRPOptions
	out     io.Writer
}

// NewMRPCommand creates a new MRP command with the given configuration
func NewMRPCommand(config Config, options MRPOptions, out io.Writer) *MRPCommand {
	return &MRPCommand{
		config:  config,
		options: options,
		out:     out,
	}
}

// ErrRejectedSteps is returned in strict mode when any step was rejected
var ErrRejectedSteps = errors.New("rejected steps")

func newMRPCommand() *cobra.Command {
	var opts MRPOptions

	cmd := &cobra.Command{
		Use:   "mrp --steps FILE",
		Short: "Replay insertion steps from a CSV file and compute material requirements",
		Long: `Reads name,parent,quantity rows, inserts them in order exactly as the interactive
session would, and prints the total required quantity of every material.
Rows that fail validation or name an unknown parent are reported and skipped.`,
		Example: "bomplanner mrp --steps bicycle.csv --tree --format csv",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewMRPCommand(configFrom(cmd), opts, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&opts.StepsFile, "steps", "", "CSV file with name,parent,quantity rows")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Fail when any step is rejected")
	cmd.Flags().BoolVar(&opts.ShowTree, "tree", false, "Print the BOM tree before the results")
	cmd.Flags().BoolVar(&opts.Explode, "explode", false, "Print the per-occurrence breakdown instead of totals")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Report structural issues such as material cycles")
	_ = cmd.MarkFlagRequired("steps")

	return cmd
}

// Execute runs the MRP command
func (c *MRPCommand) Execute(ctx context.Context) error {
	rows, err := csv.NewLoader().LoadSteps(c.options.StepsFile)
	if err != nil {
		return err
	}

	a := newApp(c.config, events.NopNotifier{})

	rejected := 0
	for _, row := range rows {
		if _, err := a.service.AddNode(ctx, row.Input); err != nil {
			rejected++
			logger.Warn("step rejected", "line", row.Line, "name", row.Input.Name, "error", err)
		}
	}
	logger.Info("steps applied", "applied", len(rows)-rejected, "rejected", rejected)

	if rejected > 0 && c.options.Strict {
		return errors.Wrapf(ErrRejectedSteps, "%d of %d steps in %s", rejected, len(rows), c.options.StepsFile)
	}

	if c.options.ShowTree {
		if err := output.GenerateTree(c.out, a.service.Snapshot()); err != nil {
			return err
		}
		fmt.Fprintln(c.out)
	}

	if c.options.Check {
		if err := output.GenerateCheck(c.out, a.service.Check(), c.config.Format); err != nil {
			return err
		}
		fmt.Fprintln(c.out)
	}

	if c.options.Explode {
		rows, err := a.service.Explode(ctx)
		if err != nil {
			return err
		}
		return output.GenerateExplosion(c.out, rows, c.config.Format)
	}

	start := time.Now()
	result, err := a.service.CalculateMRP(ctx)
	if err != nil {
		return err
	}
	logger.Debug("mrp completed", "elapsed", time.Since(start))

	return output.Generate(c.out, result, c.config.Format)
}
