// Package cli wires the transitfit commands.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/SaeedTaghavi/transit-fitting/internal/config"
	"github.com/SaeedTaghavi/transit-fitting/pkg/logger"
)

// state carries configuration shared by subcommands.
type state struct {
	cfg *config.Config
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		logLevel string
	)
	st := &state{}

	cmd := &cobra.Command{
		Use:           "transitfit",
		Short:         "transitfit fits transit models to photometric light curves",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			level := cfg.LogLevel
			if logLevel != "" {
				level = logLevel
			}
			return logger.SetLevelString(level)
		},
	}
	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (or set TRANSITFIT_CONFIG)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level")

	cmd.AddCommand(
		newFitCmd(st),
		newSampleCmd(st),
		newShowCmd(st),
		newExportCmd(st),
		newSimCmd(st),
	)
	return cmd
}
