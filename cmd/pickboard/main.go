// Command pickboard runs the API server, its background workers and the
// maintenance tasks that operate on the same database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/deppfellow/pickboard/internal/config"
	"github.com/deppfellow/pickboard/internal/logger"
	"github.com/deppfellow/pickboard/internal/repository"
	"github.com/deppfellow/pickboard/internal/server"
	"github.com/deppfellow/pickboard/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "pickboard",
		Short: "Notes and tournament bracket predictions API",
		Long: `pickboard serves the notes and bracket prediction API and runs the
maintenance tasks that share its database.

Configuration is read from PICKBOARD_* environment variables (a .env file in
the working directory is loaded first).`,
		SilenceUsage: true,
	}

	initializeCommands(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}

func initializeCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newRecalculateCommand(),
		newRefreshRatingsCommand(),
		newPurgeTournamentsCommand(),
		newPreviewEmailCommand(),
	)
}

// app is everything a command needs after configuration is loaded.
type app struct {
	cfg           *config.Config
	logger        zerolog.Logger
	loggerService *logger.LoggerService
	server        *server.Server
	services      *service.Services
}

// loadConfig loads the configuration and builds the root logger.
func loadConfig() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, zerolog.Logger{}, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	appLogger := logger.NewLoggerWithService(cfg.Observability, loggerService)
	return cfg, loggerService, appLogger, nil
}

// bootstrap connects to every backing service and builds the service layer.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, loggerService, appLogger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	srv, err := server.New(ctx, cfg, &appLogger, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	services, err := service.NewService(srv, repository.NewRepositories(srv))
	if err != nil {
		_ = srv.Shutdown(ctx)
		loggerService.Shutdown()
		return nil, fmt.Errorf("could not create services: %w", err)
	}

	return &app{
		cfg:           cfg,
		logger:        appLogger,
		loggerService: loggerService,
		server:        srv,
		services:      services,
	}, nil
}

// close releases connections for the one-shot commands.
func (a *app) close(ctx context.Context) {
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("shutdown finished with errors")
	}
	a.loggerService.Shutdown()
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stderr)
}
