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

type ProfileService interface {
	GetMe(ctx context.Context, userID string) (*model.Profile, error)
	UpdateMe(ctx context.Context, userID string, update model.UpdateProfile) (*model.Profile, error)
	GetProfile(ctx context.Context, userID string, page model.Page) (*model.ProfilePage, error)
	Reactors(ctx context.Context, noteID uuid.UUID, kind model.ReactionKind) ([]model.ProfileSummary, error)
}

type ProfileHandler struct {
	Handler
	profiles ProfileService
}

func NewProfileHandler(s *server.Server, profiles ProfileService) *ProfileHandler {
	return &ProfileHandler{
		Handler:  NewHandler(s),
		profiles: profiles,
	}
}

// EmptyRequest is bound by endpoints that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error { return nil }

// PageQuery is the limit/offset window of a listing. It is embedded, and
// exported so Echo can bind into it.
type PageQuery struct {
	Limit  int `query:"limit" json:"-" validate:"min=0,max=200"`
	Offset int `query:"offset" json:"-" validate:"min=0"`
}

func (p PageQuery) Page() model.Page {
	return model.NewPage(p.Limit, p.Offset)
}

type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=150"`
	ImageURL *string `json:"image_url" validate:"omitempty,url,max=2048"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Username != nil {
		trimmed := strings.TrimSpace(*r.Username)
		r.Username = &trimmed
	}
	return validation.Struct(r)
}

type GetProfileRequest struct {
	UserID string `param:"user_id" json:"-" validate:"required,max=255"`
	PageQuery
}

func (r *GetProfileRequest) Validate() error {
	return validation.Struct(r)
}

func (h *ProfileHandler) GetMe(c echo.Context, _ *EmptyRequest) (*model.Profile, error) {
	return h.profiles.GetMe(c.Request().Context(), middleware.GetUserID(c))
}

func (h *ProfileHandler) UpdateMe(c echo.Context, req *UpdateProfileRequest) (*model.Profile, error) {
	return h.profiles.UpdateMe(c.Request().Context(), middleware.GetUserID(c), model.UpdateProfile{
		Username: req.Username,
		ImageURL: req.ImageURL,
	})
}

func (h *ProfileHandler) GetProfile(c echo.Context, req *GetProfileRequest) (*model.ProfilePage, error) {
	return h.profiles.GetProfile(c.Request().Context(), req.UserID, req.Page())
}
