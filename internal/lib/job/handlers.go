package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deppfellow/pickboard/internal/lib/email"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type Recalculator interface {
	RecalculateScores(ctx context.Context, tournamentID uuid.UUID) (*model.Leaderboard, error)
}

// EmailLookup resolves a user id to its primary email address.
type EmailLookup interface {
	LookupEmail(ctx context.Context, userID string) (string, error)
}

type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to string, data email.WelcomeData) error
	SendTournamentResultsEmail(ctx context.Context, to string, data email.TournamentResultsData) error
}

// Handlers holds what the task handlers need.
type Handlers struct {
	Recalculator Recalculator
	Emails       EmailLookup
	Mailer       Mailer
	Logger       *zerolog.Logger
}

// RegisterHandlers wires every task type to h.
func (j *JobService) RegisterHandlers(h *Handlers) {
	j.Handle(TaskTournamentRecalculate, h.HandleRecalculate)
	j.Handle(TaskWelcomeEmail, h.HandleWelcomeEmail)
	j.Handle(TaskTournamentResultsEmail, h.HandleTournamentResultsEmail)
}

func decode(t *asynq.Task, v any) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		// A malformed payload will never succeed.
		return fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func (h *Handlers) HandleRecalculate(ctx context.Context, t *asynq.Task) error {
	var p RecalculatePayload
	if err := decode(t, &p); err != nil {
		return err
	}

	lb, err := h.Recalculator.RecalculateScores(ctx, p.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to recalculate tournament %s: %w", p.TournamentID, err)
	}

	h.Logger.Info().
		Str("type", t.Type()).
		Str("tournament_id", p.TournamentID.String()).
		Int("entries", len(lb.Entries)).
		Msg("recalculated tournament scores")
	return nil
}

func (h *Handlers) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	to, err := h.Emails.LookupEmail(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up email of %s: %w", p.UserID, err)
	}

	err = h.Mailer.SendWelcomeEmail(ctx, to, email.WelcomeData{
		Username: p.Username,
		JoinedAt: p.JoinedAt,
	})
	return h.finishEmail(t, p.UserID, err)
}

func (h *Handlers) HandleTournamentResultsEmail(ctx context.Context, t *asynq.Task) error {
	var p TournamentResultsPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	to, err := h.Emails.LookupEmail(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up email of %s: %w", p.UserID, err)
	}

	err = h.Mailer.SendTournamentResultsEmail(ctx, to, email.TournamentResultsData{
		TournamentName: p.TournamentName,
		Username:       p.Username,
		Position:       p.Position,
		Score:          p.Score,
		CorrectPicks:   p.CorrectPicks,
		CoLeaders:      p.CoLeaders,
		WinnerReward:   p.WinnerReward,
		LoserForfeit:   p.LoserForfeit,
	})
	return h.finishEmail(t, p.UserID, err)
}

// finishEmail logs the outcome of a send. With email disabled the task
// succeeds so it is not retried.
func (h *Handlers) finishEmail(t *asynq.Task, userID string, err error) error {
	switch {
	case errors.Is(err, email.ErrDisabled):
		h.Logger.Warn().
			Str("type", t.Type()).
			Str("user_id", userID).
			Msg("email disabled, dropping task")
		return nil
	case err != nil:
		h.Logger.Error().
			Str("type", t.Type()).
			Str("user_id", userID).
			Err(err).
			Msg("failed to send email")
		return err
	}

	h.Logger.Info().
		Str("type", t.Type()).
		Str("user_id", userID).
		Msg("successfully sent email")
	return nil
}
