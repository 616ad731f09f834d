package handler

import (
	"context"
	"strings"

	"github.com/deppfellow/pickboard/internal/middleware"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/deppfellow/pickboard/internal/server"
	"github.com/deppfellow/pickboard/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type NoteService interface {
	Create(ctx context.Context, authorID, content string) (*model.Note, error)
	List(ctx context.Context, authorID string, sort model.NoteSort, page model.Page) ([]model.Note, error)
	Delete(ctx context.Context, id uuid.UUID, authorID string) error
	AddComment(ctx context.Context, noteID uuid.UUID, authorID, content string) (*model.Comment, error)
	React(ctx context.Context, noteID uuid.UUID, userID string, kind model.ReactionKind) (model.ReactionCounts, error)
}

type NoteHandler struct {
	Handler
	notes    NoteService
	profiles ProfileService
}

func NewNoteHandler(s *server.Server, notes NoteService, profiles ProfileService) *NoteHandler {
	return &NoteHandler{
		Handler:  NewHandler(s),
		notes:    notes,
		profiles: profiles,
	}
}

type CreateNoteRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func (r *CreateNoteRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	return validation.Struct(r)
}

type ListNotesRequest struct {
	Sort string `query:"sort" json:"-" validate:"omitempty,oneof=created_at most_likes most_dislikes"`
	PageQuery
}

func (r *ListNotesRequest) Validate() error {
	return validation.Struct(r)
}

type ListUserNotesRequest struct {
	UserID string `param:"user_id" json:"-" validate:"required,max=255"`
	ListNotesRequest
}

func (r *ListUserNotesRequest) Validate() error {
	return validation.Struct(r)
}

// NoteIDRequest addresses a single note by path id.
type NoteIDRequest struct {
	ID string `param:"id" json:"-" validate:"required,uuid"`
}

func (r *NoteIDRequest) Validate() error {
	return validation.Struct(r)
}

func (r *NoteIDRequest) noteID() uuid.UUID {
	return validation.ParseUUID(r.ID)
}

type AddCommentRequest struct {
	NoteIDRequest
	Content string `json:"content" validate:"required,max=5000"`
}

func (r *AddCommentRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	return validation.Struct(r)
}

func (h *NoteHandler) CreateNote(c echo.Context, req *CreateNoteRequest) (*model.Note, error) {
	return h.notes.Create(c.Request().Context(), middleware.GetUserID(c), req.Content)
}

func (h *NoteHandler) ListMyNotes(c echo.Context, req *ListNotesRequest) ([]model.Note, error) {
	return h.notes.List(c.Request().Context(), middleware.GetUserID(c), model.ParseNoteSort(req.Sort), req.Page())
}

func (h *NoteHandler) ListUserNotes(c echo.Context, req *ListUserNotesRequest) ([]model.Note, error) {
	return h.notes.List(c.Request().Context(), req.UserID, model.ParseNoteSort(req.Sort), req.Page())
}

func (h *NoteHandler) ListAllNotes(c echo.Context, req *ListNotesRequest) ([]model.Note, error) {
	return h.notes.List(c.Request().Context(), "", model.ParseNoteSort(req.Sort), req.Page())
}

func (h *NoteHandler) DeleteNote(c echo.Context, req *NoteIDRequest) error {
	return h.notes.Delete(c.Request().Context(), req.noteID(), middleware.GetUserID(c))
}

func (h *NoteHandler) AddComment(c echo.Context, req *AddCommentRequest) (*model.Comment, error) {
	return h.notes.AddComment(c.Request().Context(), req.noteID(), middleware.GetUserID(c), req.Content)
}

func (h *NoteHandler) Like(c echo.Context, req *NoteIDRequest) (model.ReactionCounts, error) {
	return h.notes.React(c.Request().Context(), req.noteID(), middleware.GetUserID(c), model.ReactionLike)
}

func (h *NoteHandler) Dislike(c echo.Context, req *NoteIDRequest) (model.ReactionCounts, error) {
	return h.notes.React(c.Request().Context(), req.noteID(), middleware.GetUserID(c), model.ReactionDislike)
}

func (h *NoteHandler) LikedBy(c echo.Context, req *NoteIDRequest) ([]model.ProfileSummary, error) {
	return h.profiles.Reactors(c.Request().Context(), req.noteID(), model.ReactionLike)
}

func (h *NoteHandler) DislikedBy(c echo.Context, req *NoteIDRequest) ([]model.ProfileSummary, error) {
	return h.profiles.Reactors(c.Request().Context(), req.noteID(), model.ReactionDislike)
}
