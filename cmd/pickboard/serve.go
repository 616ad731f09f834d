package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/pickboard/internal/database"
	"github.com/deppfellow/pickboard/internal/handler"
	"github.com/deppfellow/pickboard/internal/lib/email"
	"github.com/deppfellow/pickboard/internal/lib/job"
	"github.com/deppfellow/pickboard/internal/router"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	if migrate {
		if _, err := database.Migrate(ctx, &a.logger, a.cfg); err != nil {
			a.close(ctx)
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	a.server.Job.RegisterHandlers(&job.Handlers{
		Recalculator: a.services.Tournament,
		Emails:       a.services.Auth,
		Mailer:       email.NewClient(a.cfg, &a.logger),
		Logger:       &a.logger,
	})
	if err := a.server.StartJobs(); err != nil {
		a.close(ctx)
		return fmt.Errorf("failed to start job workers: %w", err)
	}

	handlers := handler.NewHandlers(a.server, a.services)
	a.server.SetupHTTPServer(router.NewRouter(a.server, handlers, a.services))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Start()
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			a.logger.Error().Err(err).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := a.server.Shutdown(shutdownCtx)
	a.loggerService.Shutdown()

	if shutdownErr != nil {
		a.logger.Error().Err(shutdownErr).Msg("server forced to shutdown")
	} else {
		a.logger.Info().Msg("server exited properly")
	}
	return errors.Join(err, shutdownErr)
}
