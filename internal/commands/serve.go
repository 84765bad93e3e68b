package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/cobra"

	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/presence"
	"github.com/balkashynov/punchd/internal/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service with the sweeper and cleanup tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, gdb, err := setup()
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if cfg.JWTSecret == "" {
			return fmt.Errorf("PUNCHD_JWT_SECRET is required to serve")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := newLogger()
		svc := newService(gdb, cfg)

		sweepTicker := time.NewTicker(cfg.SweepInterval)
		defer sweepTicker.Stop()
		presence.NewSweeper(ctx, svc, sweepTicker.C).Run()

		cleanTicker := time.NewTicker(cfg.CleanupInterval)
		defer cleanTicker.Stop()
		presence.NewCleaner(ctx, svc, cleanTicker.C).Run()

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: routes.NewRouter(gdb, svc, cfg.JWTSecret),
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info(ctx, "listening", slog.F("addr", cfg.Addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
