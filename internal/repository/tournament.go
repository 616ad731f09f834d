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

type TournamentRepository struct {
	db beginner
}

func NewTournamentRepository(db beginner) *TournamentRepository {
	return &TournamentRepository{db: db}
}

// Create inserts a tournament, its teams in seed order and an actual
// bracket whose round of 16 is seeded from those teams, all in one
// transaction.
func (r *TournamentRepository) Create(ctx context.Context, in model.NewTournament) (*model.TournamentDetail, error) {
	var detail model.TournamentDetail

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO tournaments (
				author_id, name, logo_url, banner_url, point_system,
				correct_score_bonus, winner_reward, loser_forfeit
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		`, in.AuthorID, in.Name, in.LogoURL, in.BannerURL, in.PointSystem,
			in.CorrectScoreBonus, in.WinnerReward, in.LoserForfeit)
		if err != nil {
			return fmt.Errorf("failed to insert tournament: %w", err)
		}
		detail.Tournament, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Tournament])
		if err != nil {
			return fmt.Errorf("failed to collect tournament: %w", err)
		}

		detail.Teams = make([]model.Team, 0, len(in.Teams))
		for i, name := range in.Teams {
			team := model.Team{TournamentID: detail.ID, Name: name, Seed: i + 1}
			err := tx.QueryRow(ctx, `
				INSERT INTO teams (tournament_id, name, seed)
				VALUES ($1, $2, $3)
				RETURNING id
			`, team.TournamentID, team.Name, team.Seed).Scan(&team.ID)
			if err != nil {
				return fmt.Errorf("failed to insert team %q: %w", name, err)
			}
			detail.Teams = append(detail.Teams, team)
		}

		rounds, err := bracket.Seeded(detail.TeamIDs())
		if err != nil {
			return err
		}

		rows, err = tx.Query(ctx, `
			INSERT INTO brackets (tournament_id, author_id, is_actual, rounds)
			VALUES ($1, $2, TRUE, $3)
			RETURNING *
		`, detail.ID, in.AuthorID, rounds)
		if err != nil {
			return fmt.Errorf("failed to insert actual bracket: %w", err)
		}
		detail.ActualBracket, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Bracket])
		if err != nil {
			return fmt.Errorf("failed to collect actual bracket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

func (r *TournamentRepository) List(ctx context.Context, page model.Page) ([]model.Tournament, error) {
	page = model.NewPage(page.Limit, page.Offset)

	rows, err := r.db.Query(ctx, `
		SELECT * FROM tournaments
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}

	tournaments, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Tournament])
	if err != nil {
		return nil, fmt.Errorf("failed to collect tournaments: %w", err)
	}
	return tournaments, nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Tournament, error) {
	rows, err := r.db.Query(ctx, `SELECT * FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournament %s: %w", id, err)
	}

	tournament, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Tournament])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.WrapNoRows("tournaments", err)
		}
		return nil, fmt.Errorf("failed to collect tournament %s: %w", id, err)
	}
	return tournament, nil
}

// GetDetail loads a tournament with its teams and actual bracket.
func (r *TournamentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.TournamentDetail, error) {
	tournament, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &model.TournamentDetail{Tournament: *tournament}

	rows, err := r.db.Query(ctx, `
		SELECT id, tournament_id, name, seed
		FROM teams
		WHERE tournament_id = $1
		ORDER BY seed
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams of %s: %w", id, err)
	}
	detail.Teams, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Team])
	if err != nil {
		return nil, fmt.Errorf("failed to collect teams of %s: %w", id, err)
	}

	actual, err := getActualBracket(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	detail.ActualBracket = actual

	return detail, nil
}

// Delete removes a tournament owned by authorID together with its teams
// and brackets.
func (r *TournamentRepository) Delete(ctx context.Context, id uuid.UUID, authorID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tournaments WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.WrapNoRows("tournaments", pgx.ErrNoRows)
	}
	return nil
}

// ClaimResultsAnnouncement marks the results of actualVersion as announced.
// It reports false when that version was already claimed, so each version
// is emailed once even with concurrent recalculations.
func (r *TournamentRepository) ClaimResultsAnnouncement(ctx context.Context, id uuid.UUID, actualVersion int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE tournaments
		SET results_announced_version = $2
		WHERE id = $1 AND results_announced_version IS DISTINCT FROM $2
	`, id, actualVersion)
	if err != nil {
		return false, fmt.Errorf("failed to claim results announcement of %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// PurgeAll deletes every bracket and tournament and reports how many of each
// were removed.
func (r *TournamentRepository) PurgeAll(ctx context.Context) (brackets, tournaments int64, err error) {
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM brackets`)
		if err != nil {
			return fmt.Errorf("failed to delete brackets: %w", err)
		}
		brackets = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM tournaments`)
		if err != nil {
			return fmt.Errorf("failed to delete tournaments: %w", err)
		}
		tournaments = tag.RowsAffected()
		return nil
	})
	return brackets, tournaments, err
}
