package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/vsinha/bomplanner/pkg/application/services/diagram"
	"github.com/vsinha/bomplanner/pkg/domain/entities"
	"github.com/vsinha/bomplanner/pkg/domain/services"
	"github.com/vsinha/bomplanner/pkg/infrastructure/events"
	"github.com/vsinha/bomplanner/pkg/interfaces/cli/output"
)

const sessionHelp = `Commands:
  add <name> <quantity> [parent]   add a node; without a parent it becomes a new root
  mrp                              total required quantity per material
  explode                          per-occurrence breakdown
  tree                             print the BOM tree
  diagram                          print diagram elements as JSON
  check                            report material cycles and duplicates
  help                             show this help
  quit                             leave the session
Names containing spaces can be quoted: add "Seat post" 1 Frame
`

func newSessionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Build a BOM interactively and compute MRP on demand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := NewSession(configFrom(cmd), cmd.OutOrStdout())
			return session.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// Session is an interactive BOM editing session. State lives only as long
// as the session.
type Session struct {
	app *app
	out io.Writer
}

// NewSession creates a session writing results and notifications to out
func NewSession(cfg Config, out io.Writer) *Session {
	return &Session{
		app: newApp(cfg, events.WriterNotifier{W: out}),
		out: out,
	}
}

// Run reads commands until EOF or quit
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(s.out, "bomplanner session. Type \"help\" for commands.\n")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		args, err := splitArgs(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "❌ %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return nil
		}

		if err := s.Exec(ctx, args); err != nil {
			// Failures are already reported to the user by the notifier
			if !isDomainError(err) {
				fmt.Fprintf(s.out, "❌ %v\n", err)
			}
		}
	}
}

// Exec runs a single session command
func (s *Session) Exec(ctx context.Context, args []string) error {
	format := s.app.config.Format

	switch args[0] {
	case "add":
		if len(args) < 3 || len(args) > 4 {
			return errors.New("usage: add <name> <quantity> [parent]")
		}
		input := services.NodeInput{Name: args[1], Quantity: args[2]}
		if len(args) == 4 {
			input.Parent = args[3]
		}
		_, err := s.app.service.AddNode(ctx, input)
		return err

	case "mrp":
		result, err := s.app.service.CalculateMRP(ctx)
		if err != nil {
			return err
		}
		return output.Generate(s.out, result, format)

	case "explode":
		rows, err := s.app.service.Explode(ctx)
		if err != nil {
			return err
		}
		return output.GenerateExplosion(s.out, rows, format)

	case "tree":
		return s.report(output.GenerateTree(s.out, s.app.service.Snapshot()))

	case "diagram":
		d, err := diagram.Build(s.app.service.Snapshot())
		if err != nil {
			return s.report(err)
		}
		return output.WriteJSON(s.out, d)

	case "check":
		return output.GenerateCheck(s.out, s.app.service.Check(), format)

	case "help":
		_, err := io.WriteString(s.out, sessionHelp)
		return err

	default:
		return errors.Newf("unknown command %q, type \"help\" for commands", args[0])
	}
}

// report notifies the user of errors from operations that bypass the service
func (s *Session) report(err error) error {
	if err != nil {
		events.WriterNotifier{W: s.out}.Notify(events.SeverityError, err.Error())
	}
	return err
}

func isDomainError(err error) bool {
	return errors.Is(err, entities.ErrValidation) ||
		errors.Is(err, entities.ErrParentNotFound) ||
		errors.Is(err, entities.ErrEmptyTree)
}

// splitArgs splits a line on whitespace, keeping double-quoted runs together
func splitArgs(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuotes, hasToken := false, false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasToken = true
		case !inQuotes && (r == ' ' || r == '\t'):
			if hasToken {
				args = append(args, current.String())
				current.Reset()
				hasToken = false
			}
		default:
			current.WriteRune(r)
			hasToken = true
		}
	}

	if inQuotes {
		return nil, errors.New("unterminated quote")
	}
	if hasToken {
		args = append(args, current.String())
	}
	return args, nil
}
