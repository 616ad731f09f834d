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

type NoteRepository struct {
	db beginner
}

func NewNoteRepository(db beginner) *NoteRepository {
	return &NoteRepository{db: db}
}

// noteSelect renders notes with author username, reaction counts and the
// usernames behind each reaction.
const noteSelect = `
	SELECT n.id,
	       n.author_id,
	       a.username AS author_username,
	       n.content,
	       COUNT(r.user_id) FILTER (WHERE r.kind = 'like') AS likes,
	       COUNT(r.user_id) FILTER (WHERE r.kind = 'dislike') AS dislikes,
	       COALESCE(array_agg(rp.username ORDER BY r.created_at) FILTER (WHERE r.kind = 'like'), '{}') AS liked_by,
	       COALESCE(array_agg(rp.username ORDER BY r.created_at) FILTER (WHERE r.kind = 'dislike'), '{}') AS disliked_by,
	       n.created_at,
	       n.updated_at
	FROM notes n
	JOIN profiles a ON a.id = n.author_id
	LEFT JOIN note_reactions r ON r.note_id = n.id
	LEFT JOIN profiles rp ON rp.id = r.user_id
`

const noteGroupBy = ` GROUP BY n.id, a.username `

var noteOrderBy = map[model.NoteSort]string{
	model.SortCreatedAt:    ` ORDER BY n.created_at DESC, n.id `,
	model.SortMostLikes:    ` ORDER BY likes DESC, n.created_at DESC, n.id `,
	model.SortMostDislikes: ` ORDER BY dislikes DESC, n.created_at DESC, n.id `,
}

func (r *NoteRepository) Create(ctx context.Context, authorID, content string) (*model.Note, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO notes (author_id, content)
		VALUES ($1, $2)
		RETURNING id
	`, authorID, content).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create note for %s: %w", authorID, err)
	}

	return r.GetByID(ctx, id)
}

func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	rows, err := r.db.Query(ctx, noteSelect+` WHERE n.id = $1 `+noteGroupBy, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query note %s: %w", id, err)
	}

	note, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Note])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.WrapNoRows("notes", err)
		}
		return nil, fmt.Errorf("failed to collect note %s: %w", id, err)
	}

	notes := []model.Note{*note}
	if err := r.attachComments(ctx, notes); err != nil {
		return nil, err
	}
	return &notes[0], nil
}

// List returns a page of notes in filter.Sort order, comments attached.
func (r *NoteRepository) List(ctx context.Context, filter model.NoteFilter) ([]model.Note, error) {
	page := model.NewPage(filter.Page.Limit, filter.Page.Offset)
	orderBy, ok := noteOrderBy[filter.Sort]
	if !ok {
		orderBy = noteOrderBy[model.SortCreatedAt]
	}

	query := noteSelect
	args := []any{page.Limit, page.Offset}
	if filter.AuthorID != "" {
		query += ` WHERE n.author_id = $3 `
		args = append(args, filter.AuthorID)
	}
	query += noteGroupBy + orderBy + ` LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}

	notes, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Note])
	if err != nil {
		return nil, fmt.Errorf("failed to collect notes: %w", err)
	}

	if err := r.attachComments(ctx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *NoteRepository) attachComments(ctx context.Context, notes []model.Note) error {
	if len(notes) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(notes))
	index := make(map[uuid.UUID]int, len(notes))
	for i := range notes {
		ids[i] = notes[i].ID
		index[notes[i].ID] = i
		notes[i].Comments = []model.Comment{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.note_id, c.author_id, p.username AS author_username, c.content, c.created_at
		FROM comments c
		JOIN profiles p ON p.id = c.author_id
		WHERE c.note_id = ANY($1)
		ORDER BY c.created_at, c.id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query comments: %w", err)
	}

	comments, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Comment])
	if err != nil {
		return fmt.Errorf("failed to collect comments: %w", err)
	}

	for _, c := range comments {
		i := index[c.NoteID]
		notes[i].Comments = append(notes[i].Comments, c)
	}
	return nil
}

// Delete removes a note owned by authorID and recomputes the author's
// rating in the same transaction. A note owned by someone else is reported
// as missing.
func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID, authorID string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND author_id = $2`, id, authorID)
		if err != nil {
			return fmt.Errorf("failed to delete note %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return sqlerr.WrapNoRows("notes", pgx.ErrNoRows)
		}

		// Reactions on the deleted note no longer count toward the rating.
		return recalculateRating(ctx, tx, authorID)
	})
}

func (r *NoteRepository) AddComment(ctx context.Context, noteID uuid.UUID, authorID, content string) (*model.Comment, error) {
	rows, err := r.db.Query(ctx, `
		WITH inserted AS (
			INSERT INTO comments (note_id, author_id, content)
			SELECT n.id, $2, $3 FROM notes n WHERE n.id = $1
			RETURNING *
		)
		SELECT i.id, i.note_id, i.author_id, p.username AS author_username, i.content, i.created_at
		FROM inserted i
		JOIN profiles p ON p.id = i.author_id
	`, noteID, authorID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment to note %s: %w", noteID, err)
	}

	comment, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Comment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.WrapNoRows("notes", err)
		}
		return nil, fmt.Errorf("failed to add comment to note %s: %w", noteID, err)
	}
	return comment, nil
}

// ToggleReaction applies a like or dislike from userID to a note:
//
//   - no reaction yet: the reaction is added
//   - the same reaction: it is removed
//   - the opposite reaction: it is replaced
//
// The note author's rating is recomputed in the same transaction.
func (r *NoteRepository) ToggleReaction(ctx context.Context, noteID uuid.UUID, userID string, kind model.ReactionKind) (model.ReactionCounts, error) {
	var counts model.ReactionCounts

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var authorID string
		err := tx.QueryRow(ctx, `SELECT author_id FROM notes WHERE id = $1 FOR UPDATE`, noteID).Scan(&authorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return sqlerr.WrapNoRows("notes", err)
			}
			return fmt.Errorf("failed to lock note %s: %w", noteID, err)
		}

		var current string
		err = tx.QueryRow(ctx, `
			SELECT kind FROM note_reactions
			WHERE note_id = $1 AND user_id = $2
			FOR UPDATE
		`, noteID, userID).Scan(&current)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to read reaction: %w", err)
		}

		if model.ReactionKind(current) == kind {
			_, err = tx.Exec(ctx, `DELETE FROM note_reactions WHERE note_id = $1 AND user_id = $2`, noteID, userID)
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO note_reactions (note_id, user_id, kind)
				VALUES ($1, $2, $3)
				ON CONFLICT (note_id, user_id)
				DO UPDATE SET kind = EXCLUDED.kind, created_at = CURRENT_TIMESTAMP
			`, noteID, userID, string(kind))
		}
		if err != nil {
			return fmt.Errorf("failed to toggle %s on note %s: %w", kind, noteID, err)
		}

		if err := recalculateRating(ctx, tx, authorID); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			SELECT COUNT(*) FILTER (WHERE kind = 'like'),
			       COUNT(*) FILTER (WHERE kind = 'dislike')
			FROM note_reactions
			WHERE note_id = $1
		`, noteID).Scan(&counts.Likes, &counts.Dislikes)
		if err != nil {
			return fmt.Errorf("failed to count reactions on note %s: %w", noteID, err)
		}
		return nil
	})

	return counts, err
}

// Exists reports whether a note exists.
func (r *NoteRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notes WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check note %s: %w", id, err)
	}
	return exists, nil
}
