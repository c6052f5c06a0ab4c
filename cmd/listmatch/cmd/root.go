package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"listing-matcher/internal/config"
)

var (
	cfg    config.Config
	logger zerolog.Logger

	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:          "listmatch",
	Short:        "Match shop listings to catalog products",
	Long:         "Assigns each listing to at most one product by manufacturer and model, writes per-product results, compares result sets.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			c.LogLevel = logLevel
		}
		// в CLI файл лога только по явному флагу
		c.LogFile = logFile
		cfg = c
		logger = config.SetupLogger(cfg)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this rotating file")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

// signalContext отменяется по Ctrl-C / SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// storePath — флаг --store, иначе RUN_STORE из конфигурации.
func storePath(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.RunStore
}
