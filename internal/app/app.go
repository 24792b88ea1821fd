package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kurochkinivan/pdf2csv/internal/config"
	v1 "github.com/kurochkinivan/pdf2csv/internal/controller/http/v1"
	"github.com/kurochkinivan/pdf2csv/internal/infrastructure/extraction"
	"github.com/kurochkinivan/pdf2csv/internal/session"
	"github.com/kurochkinivan/pdf2csv/internal/workflow"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

// Run serves the session API until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "starting app",
		slog.String("server_url", a.cfg.Extraction.ServerURL),
		slog.Duration("request_timeout", a.cfg.Extraction.RequestTimeout),
		slog.Duration("session_ttl", a.cfg.Sessions.TTL),
	)

	client, err := extraction.New(a.log, a.cfg.Extraction)
	if err != nil {
		return fmt.Errorf("failed to create extraction client: %w", err)
	}

	registry := session.NewRegistry(a.log, a.cfg.Sessions.TTL, a.cfg.Sessions.SweepInterval, func() *workflow.Controller {
		return workflow.NewController(a.log, client)
	})
	server := v1.NewServer(a.cfg.HTTP, registry, client)

	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "session sweeper started")
		return registry.Run(ctx)
	})

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server",
			slog.String("addr", net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port)),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "app stopped with error", slog.String("err", err.Error()))

		return err
	}

	a.log.InfoContext(ctx, "app stopped gracefully")

	return nil
}
