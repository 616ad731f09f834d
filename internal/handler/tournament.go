package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/deppfellow/pickboard/internal/bracket"
	"github.com/deppfellow/pickboard/internal/middleware"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/deppfellow/pickboard/internal/server"
	"github.com/deppfellow/pickboard/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TournamentService interface {
	Create(ctx context.Context, in model.NewTournament) (*model.TournamentDetail, error)
	List(ctx context.Context, page model.Page) ([]model.Tournament, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TournamentDetail, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
	UpdateActualBracket(ctx context.Context, id uuid.UUID, userID string, rounds bracket.Rounds) (*model.Bracket, error)
	SubmitPrediction(ctx context.Context, id uuid.UUID, userID string, rounds bracket.Rounds) (*model.Bracket, error)
	GetMyPrediction(ctx context.Context, id uuid.UUID, userID string) (*model.Bracket, error)
	Recalculate(ctx context.Context, id uuid.UUID, userID string) (*model.Leaderboard, error)
	Leaderboard(ctx context.Context, id uuid.UUID) (*model.Leaderboard, error)
}

type TournamentHandler struct {
	Handler
	tournaments TournamentService
}

func NewTournamentHandler(s *server.Server, tournaments TournamentService) *TournamentHandler {
	return &TournamentHandler{
		Handler:     NewHandler(s),
		tournaments: tournaments,
	}
}

type CreateTournamentRequest struct {
	Name              string   `json:"name" validate:"required,max=100"`
	LogoURL           string   `json:"logo_url" validate:"omitempty,url,max=2048"`
	BannerURL         string   `json:"banner_url" validate:"omitempty,url,max=2048"`
	PointSystem       []int    `json:"point_system" validate:"omitempty,len=4,dive,min=0"`
	CorrectScoreBonus int      `json:"correct_score_bonus" validate:"min=0"`
	WinnerReward      string   `json:"winner_reward" validate:"max=5000"`
	LoserForfeit      string   `json:"loser_forfeit" validate:"max=5000"`
	Teams             []string `json:"teams" validate:"required"`
}

func (r *CreateTournamentRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.LogoURL = strings.TrimSpace(r.LogoURL)
	r.BannerURL = strings.TrimSpace(r.BannerURL)
	return validation.Struct(r)
}

type ListTournamentsRequest struct {
	PageQuery
}

func (r *ListTournamentsRequest) Validate() error {
	return validation.Struct(r)
}

type TournamentIDRequest struct {
	ID string `param:"id" json:"-" validate:"required,uuid"`
}

func (r *TournamentIDRequest) Validate() error {
	return validation.Struct(r)
}

func (r *TournamentIDRequest) tournamentID() uuid.UUID {
	return validation.ParseUUID(r.ID)
}

// BracketRequest carries a full set of picks for a tournament. Shape and
// progression are checked by the service against the tournament's teams.
type BracketRequest struct {
	TournamentIDRequest
	Rounds bracket.Rounds `json:"rounds"`
}

func (r *BracketRequest) Validate() error {
	return validation.Struct(r)
}

func (h *TournamentHandler) Create(c echo.Context, req *CreateTournamentRequest) (*model.TournamentDetail, error) {
	return h.tournaments.Create(c.Request().Context(), model.NewTournament{
		AuthorID:          middleware.GetUserID(c),
		Name:              req.Name,
		LogoURL:           req.LogoURL,
		BannerURL:         req.BannerURL,
		PointSystem:       bracket.PointSystem(req.PointSystem),
		CorrectScoreBonus: req.CorrectScoreBonus,
		WinnerReward:      req.WinnerReward,
		LoserForfeit:      req.LoserForfeit,
		Teams:             req.Teams,
	})
}

func (h *TournamentHandler) List(c echo.Context, req *ListTournamentsRequest) ([]model.Tournament, error) {
	return h.tournaments.List(c.Request().Context(), req.Page())
}

func (h *TournamentHandler) Get(c echo.Context, req *TournamentIDRequest) (*model.TournamentDetail, error) {
	return h.tournaments.Get(c.Request().Context(), req.tournamentID())
}

func (h *TournamentHandler) Delete(c echo.Context, req *TournamentIDRequest) error {
	return h.tournaments.Delete(c.Request().Context(), req.tournamentID(), middleware.GetUserID(c))
}

func (h *TournamentHandler) UpdateActualBracket(c echo.Context, req *BracketRequest) (*model.Bracket, error) {
	return h.tournaments.UpdateActualBracket(c.Request().Context(), req.tournamentID(), middleware.GetUserID(c), req.Rounds)
}

func (h *TournamentHandler) Recalculate(c echo.Context, req *TournamentIDRequest) (*model.Leaderboard, error) {
	return h.tournaments.Recalculate(c.Request().Context(), req.tournamentID(), middleware.GetUserID(c))
}

func (h *TournamentHandler) SubmitPrediction(c echo.Context, req *BracketRequest) (*model.Bracket, error) {
	return h.tournaments.SubmitPrediction(c.Request().Context(), req.tournamentID(), middleware.GetUserID(c), req.Rounds)
}

func (h *TournamentHandler) GetMyPrediction(c echo.Context, req *TournamentIDRequest) (*model.Bracket, error) {
	return h.tournaments.GetMyPrediction(c.Request().Context(), req.tournamentID(), middleware.GetUserID(c))
}

func (h *TournamentHandler) Leaderboard(c echo.Context, req *TournamentIDRequest) (*model.Leaderboard, error) {
	return h.tournaments.Leaderboard(c.Request().Context(), req.tournamentID())
}

// ExportLeaderboard renders the leaderboard as CSV, one row per entry.
func (h *TournamentHandler) ExportLeaderboard(c echo.Context, req *TournamentIDRequest) ([]byte, error) {
	board, err := h.tournaments.Leaderboard(c.Request().Context(), req.tournamentID())
	if err != nil {
		return nil, err
	}
	return leaderboardCSV(board)
}

var leaderboardHeader = []string{"position", "user_id", "username", "score", "correct_picks", "submitted_at"}

// spreadsheetSafe prefixes cells that spreadsheet apps would evaluate as a
// formula with a quote, which makes them plain text.
func spreadsheetSafe(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}

func leaderboardCSV(board *model.Leaderboard) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(leaderboardHeader); err != nil {
		return nil, err
	}
	for _, e := range board.Entries {
		row := []string{
			strconv.Itoa(e.Position),
			spreadsheetSafe(e.UserID),
			spreadsheetSafe(e.Username),
			strconv.Itoa(e.Score),
			strconv.Itoa(e.Correct),
			e.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
