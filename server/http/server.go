package serverhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"listing-matcher/internal/config"
	"listing-matcher/internal/runstore"
)

const shutdownTimeout = 10 * time.Second

// Run поднимает HTTP-сервер и блокируется до отмены ctx, затем мягко
// останавливает его. Хранилище прогонов открывается здесь же, если задано.
func Run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	var store *runstore.Store
	if cfg.RunStore != "" {
		s, err := runstore.Open(cfg.RunStore)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer s.Close()
		store = s
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(cfg, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Str("run_store", cfg.RunStore).Msg("server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("server shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("bye")
	return nil
}
