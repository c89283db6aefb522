package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vsinha/bomplanner/pkg/logger"
)

type contextKey struct{}

// NewRootCommand builds the bomplanner command tree
func NewRootCommand() *cobra.Command {
	v := newViper()
	var configFile string

	root := &cobra.Command{
		Use:   "bomplanner",
		Short: "Build bill-of-materials trees and compute material requirements",
		Long: `bomplanner builds a multi-root bill of materials one node at a time and
computes the total quantity of every material needed to make one unit of each root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfigFile(v, configFile); err != nil {
				return err
			}
			cfg, err := LoadConfig(v)
			if err != nil {
				return err
			}
			if err := logger.Configure(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
				return err
			}
			cmd.SetContext(withConfig(cmd, cfg))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to config file (default ./bomplanner.yaml)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("format", "text", "Output format: text, json, csv, html")
	flags.String("quantity-source", "catalog", "Per-unit quantity source: catalog (last insertion of a name wins) or node")
	flags.Bool("letters-only", false, "Only accept letters in material and parent names")

	bindFlags(v, flags, map[string]string{
		keyLogLevel:       "log-level",
		keyOutputFormat:   "format",
		keyQuantitySource: "quantity-source",
		keyLettersOnly:    "letters-only",
	})

	root.AddCommand(
		newSessionCommand(),
		newMRPCommand(),
		newServeCommand(v),
	)
	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		// Lookup only fails on a programming error in the flag names above
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func withConfig(cmd *cobra.Command, cfg Config) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, cfg)
}

// configFrom returns the configuration resolved by the root command
func configFrom(cmd *cobra.Command) Config {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(contextKey{}).(Config); ok {
			return cfg
		}
	}
	return Config{Format: "text", ServerAddr: ":8080"}
}
