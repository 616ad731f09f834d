package main

import (
	"fmt"

	"github.com/deppfellow/pickboard/internal/database"
	"github.com/deppfellow/pickboard/internal/lib/email"
	"github.com/deppfellow/pickboard/internal/lib/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loggerService, appLogger, err := loadConfig()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			version, err := database.Migrate(cmd.Context(), &appLogger, cfg)
			if err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database at migration version %d\n", version)
			return nil
		},
	}
}

func newRecalculateCommand() *cobra.Command {
	var tournament string

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Rescore every prediction of a tournament and print its leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(tournament)
			if err != nil {
				return fmt.Errorf("invalid --tournament %q: %w", tournament, err)
			}

			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			board, err := a.services.Tournament.RecalculateScores(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to recalculate tournament %s: %w", id, err)
			}
			return utils.PrintJSON(cmd.OutOrStdout(), board)
		},
	}
	cmd.Flags().StringVar(&tournament, "tournament", "", "tournament id")
	_ = cmd.MarkFlagRequired("tournament")
	return cmd
}

func newRefreshRatingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-ratings",
		Short: "Recompute every profile's rating from its notes' reactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			updated, err := a.services.Profile.RefreshRatings(ctx)
			if err != nil {
				return fmt.Errorf("failed to refresh ratings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d profiles\n", updated)
			return nil
		},
	}
}

func newPurgeTournamentsCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge-tournaments",
		Short: "Delete every tournament together with its teams and brackets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to purge without --yes")
			}

			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			brackets, tournaments, err := a.services.Tournament.PurgeAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to purge tournaments: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d brackets and %d tournaments\n", brackets, tournaments)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every tournament")
	return cmd
}

func newPreviewEmailCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "preview-email",
		Short: "Render an email template with sample data to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl := email.Template(name)
			data, ok := email.PreviewData[tmpl]
			if !ok {
				return fmt.Errorf("unknown template %q", name)
			}

			html, err := email.Render(tmpl, data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "template", string(email.TemplateWelcome), "template name (welcome, tournament_results)")
	return cmd
}
