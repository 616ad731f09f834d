package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/pickboard/internal/bracket"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/deppfellow/pickboard/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BracketRepository struct {
	db beginner
}

func NewBracketRepository(db beginner) *BracketRepository {
	return &BracketRepository{db: db}
}

func collectBracket(rows pgx.Rows, err error) (*model.Bracket, error) {
	if err != nil {
		return nil, err
	}
	b, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Bracket])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.WrapNoRows("brackets", err)
		}
		return nil, err
	}
	return b, nil
}

func getActualBracket(ctx context.Context, q querier, tournamentID uuid.UUID) (*model.Bracket, error) {
	b, err := collectBracket(q.Query(ctx, `
		SELECT * FROM brackets
		WHERE tournament_id = $1 AND is_actual
	`, tournamentID))
	if err != nil {
		return nil, fmt.Errorf("failed to load actual bracket of %s: %w", tournamentID, err)
	}
	return b, nil
}

func (r *BracketRepository) GetActual(ctx context.Context, tournamentID uuid.UUID) (*model.Bracket, error) {
	return getActualBracket(ctx, r.db, tournamentID)
}

func (r *BracketRepository) UpdateActual(ctx context.Context, tournamentID uuid.UUID, rounds bracket.Rounds) (*model.Bracket, error) {
	b, err := collectBracket(r.db.Query(ctx, `
		UPDATE brackets
		SET rounds = $2,
		    version = version + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE tournament_id = $1 AND is_actual
		RETURNING *
	`, tournamentID, rounds))
	if err != nil {
		return nil, fmt.Errorf("failed to update actual bracket of %s: %w", tournamentID, err)
	}
	return b, nil
}

// UpsertPrediction stores authorID's prediction for a tournament, replacing
// any earlier one. The score resets until the next recalculation.
func (r *BracketRepository) UpsertPrediction(ctx context.Context, tournamentID uuid.UUID, authorID string, rounds bracket.Rounds) (*model.Bracket, error) {
	b, err := collectBracket(r.db.Query(ctx, `
		INSERT INTO brackets (tournament_id, author_id, is_actual, rounds)
		VALUES ($1, $2, FALSE, $3)
		ON CONFLICT (tournament_id, author_id) WHERE NOT is_actual
		DO UPDATE SET rounds        = EXCLUDED.rounds,
		              score         = 0,
		              correct_picks = 0,
		              breakdown     = '{}',
		              version       = brackets.version + 1,
		              submitted_at  = CURRENT_TIMESTAMP,
		              updated_at    = CURRENT_TIMESTAMP
		RETURNING *
	`, tournamentID, authorID, rounds))
	if err != nil {
		return nil, fmt.Errorf("failed to save prediction of %s for %s: %w", authorID, tournamentID, err)
	}
	return b, nil
}

func (r *BracketRepository) GetPrediction(ctx context.Context, tournamentID uuid.UUID, authorID string) (*model.Bracket, error) {
	b, err := collectBracket(r.db.Query(ctx, `
		SELECT * FROM brackets
		WHERE tournament_id = $1 AND author_id = $2 AND NOT is_actual
	`, tournamentID, authorID))
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction of %s for %s: %w", authorID, tournamentID, err)
	}
	return b, nil
}

// ListPredictions returns every predicted bracket of a tournament with its
// author's username.
func (r *BracketRepository) ListPredictions(ctx context.Context, tournamentID uuid.UUID) ([]model.Prediction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT b.*, p.username
		FROM brackets b
		JOIN profiles p ON p.id = b.author_id
		WHERE b.tournament_id = $1 AND NOT b.is_actual
		ORDER BY b.submitted_at, b.id
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions of %s: %w", tournamentID, err)
	}

	predictions, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Prediction])
	if err != nil {
		return nil, fmt.Errorf("failed to collect predictions of %s: %w", tournamentID, err)
	}
	return predictions, nil
}

// ErrStaleScores reports that a bracket changed after it was read for
// scoring. Nothing from the run was saved.
var ErrStaleScores = errors.New("brackets changed during recalculation")

// SaveScores persists a recalculation in one transaction. The actual bracket
// row stays locked until commit, and every score is written only if its
// bracket still has the version it was computed from. Any mismatch rolls
// the whole run back with ErrStaleScores.
func (r *BracketRepository) SaveScores(ctx context.Context, run model.ScoreRun) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var version int64
		err := tx.QueryRow(ctx, `
			SELECT version FROM brackets
			WHERE tournament_id = $1 AND is_actual
			FOR UPDATE
		`, run.TournamentID).Scan(&version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return sqlerr.WrapNoRows("brackets", err)
			}
			return fmt.Errorf("failed to lock actual bracket of %s: %w", run.TournamentID, err)
		}
		if version != run.ActualVersion {
			return ErrStaleScores
		}
		if len(run.Scores) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, s := range run.Scores {
			batch.Queue(`
				UPDATE brackets
				SET score = $2, correct_picks = $3, breakdown = $4
				WHERE id = $1 AND version = $5
			`, s.BracketID, s.Result.Total, s.Result.Correct, s.Result.Breakdown, s.Version)
		}

		results := tx.SendBatch(ctx, batch)
		for _, s := range run.Scores {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("failed to save score of bracket %s: %w", s.BracketID, err)
			}
			if tag.RowsAffected() == 0 {
				results.Close()
				return ErrStaleScores
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to save %d bracket scores: %w", len(run.Scores), err)
		}
		return nil
	})
}
