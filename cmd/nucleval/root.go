package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"nucleval/internal/config"
	"nucleval/internal/infrastructure"
	"nucleval/pkg/contracts"
)

// configKey stores the loaded config in the command context
type configKey struct{}

// NewRootCmd creates the command tree
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "nucleval",
		Short: "Evaluate nuclear structure measurements",
		Long: `nucleval parses ENSDF-style values and uncertainties, aligns the
records of several datasets and computes recommended values for every
aligned group using weighted averaging and outlier-handling methods.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}
	rootCmd.SetVersionTemplate(contracts.GetFullVersionString() + "\n")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $NUCLEVAL_CONFIG, nucleval.yaml, config.yaml)")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newFormatCmd())
	rootCmd.AddCommand(newEvaluateCmd())
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

// getConfig returns the config loaded by the root command
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// cliLogger logs to the command's stderr so stdout stays free for results
func cliLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
}
