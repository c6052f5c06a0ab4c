package cmd

import (
	"github.com/spf13/cobra"

	serverhttp "listing-matcher/server/http"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		ctx, cancel := signalContext()
		defer cancel()
		return serverhttp.Run(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default HOST)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default PORT)")
}
