package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/pickboard/internal/model"
	"github.com/deppfellow/pickboard/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProfileRepository struct {
	db beginner
}

func NewProfileRepository(db beginner) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Ensure returns the profile for userID, creating it with the user id as
// username on first use. created reports whether this call inserted it.
func (r *ProfileRepository) Ensure(ctx context.Context, userID string) (profile *model.Profile, created bool, err error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO profiles (id, username)
		VALUES ($1, $1)
		ON CONFLICT DO NOTHING
	`, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create profile for user %s: %w", userID, err)
	}

	profile, err = r.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return profile, tag.RowsAffected() == 1, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (*model.Profile, error) {
	rows, err := r.db.Query(ctx, `SELECT * FROM profiles WHERE id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile %s: %w", userID, err)
	}

	profile, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Profile])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.WrapNoRows("profiles", err)
		}
		return nil, fmt.Errorf("failed to collect profile %s: %w", userID, err)
	}
	return profile, nil
}

func (r *ProfileRepository) Update(ctx context.Context, userID string, update model.UpdateProfile) (*model.Profile, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE profiles
		SET username   = COALESCE($2, username),
		    image_url  = COALESCE($3, image_url),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING *
	`, userID, update.Username, update.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", userID, err)
	}

	profile, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Profile])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.WrapNoRows("profiles", err)
		}
		return nil, fmt.Errorf("failed to update profile %s: %w", userID, err)
	}
	return profile, nil
}

// recalculateRating sets a profile's rating to the likes minus dislikes
// over all of its notes. It runs on q so the reaction toggle can call it
// inside its transaction.
func recalculateRating(ctx context.Context, q querier, userID string) error {
	_, err := q.Exec(ctx, `
		UPDATE profiles
		SET rating = (
				SELECT COALESCE(SUM(CASE r.kind WHEN 'like' THEN 1 ELSE -1 END), 0)
				FROM notes n
				JOIN note_reactions r ON r.note_id = n.id
				WHERE n.author_id = profiles.id
			),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to recalculate rating of %s: %w", userID, err)
	}
	return nil
}

// RefreshRatings recomputes every profile's rating and reports how many
// changed.
func (r *ProfileRepository) RefreshRatings(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		WITH computed AS (
			SELECT p.id,
			       COALESCE(SUM(CASE r.kind WHEN 'like' THEN 1 WHEN 'dislike' THEN -1 END), 0) AS rating
			FROM profiles p
			LEFT JOIN notes n ON n.author_id = p.id
			LEFT JOIN note_reactions r ON r.note_id = n.id
			GROUP BY p.id
		)
		UPDATE profiles
		SET rating = computed.rating,
		    updated_at = CURRENT_TIMESTAMP
		FROM computed
		WHERE profiles.id = computed.id
		  AND profiles.rating <> computed.rating
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh ratings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListReactors returns the profiles that reacted to a note with kind.
func (r *ProfileRepository) ListReactors(ctx context.Context, noteID uuid.UUID, kind model.ReactionKind) ([]model.ProfileSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.username, p.image_url
		FROM note_reactions r
		JOIN profiles p ON p.id = r.user_id
		WHERE r.note_id = $1 AND r.kind = $2
		ORDER BY r.created_at
	`, noteID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s reactions of note %s: %w", kind, noteID, err)
	}

	profiles, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.ProfileSummary])
	if err != nil {
		return nil, fmt.Errorf("failed to collect %s reactions of note %s: %w", kind, noteID, err)
	}
	return profiles, nil
}
