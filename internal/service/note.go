package service

import (
	"context"

	"github.com/deppfellow/pickboard/internal/errs"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type NoteService struct {
	notes NoteRepository
}

func NewNoteService(notes NoteRepository) *NoteService {
	return &NoteService{notes: notes}
}

func (s *NoteService) Create(ctx context.Context, authorID, content string) (*model.Note, error) {
	note, err := s.notes.Create(ctx, authorID, content)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "note_created").
		Str("note_id", note.ID.String()).
		Msg("note created")
	return note, nil
}

// List returns notes of one author, or of everyone when authorID is empty.
func (s *NoteService) List(ctx context.Context, authorID string, sort model.NoteSort, page model.Page) ([]model.Note, error) {
	return s.notes.List(ctx, model.NoteFilter{
		AuthorID: authorID,
		Sort:     sort,
		Page:     page,
	})
}

// Delete removes a note owned by authorID. Notes of other users are
// reported as not found.
func (s *NoteService) Delete(ctx context.Context, id uuid.UUID, authorID string) error {
	if err := s.notes.Delete(ctx, id, authorID); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "note_deleted").
		Str("note_id", id.String()).
		Msg("note deleted")
	return nil
}

func (s *NoteService) AddComment(ctx context.Context, noteID uuid.UUID, authorID, content string) (*model.Comment, error) {
	return s.notes.AddComment(ctx, noteID, authorID, content)
}

// React toggles userID's reaction on a note and returns the new counts.
func (s *NoteService) React(ctx context.Context, noteID uuid.UUID, userID string, kind model.ReactionKind) (model.ReactionCounts, error) {
	if !kind.Valid() {
		return model.ReactionCounts{}, errs.NewBadRequestError("Unknown reaction", true, errs.Code("INVALID_REACTION"), nil, nil)
	}
	return s.notes.ToggleReaction(ctx, noteID, userID, kind)
}
