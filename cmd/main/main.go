package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"listing-matcher/internal/config"
	serverhttp "listing-matcher/server/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serverhttp.Run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server")
	}
}
