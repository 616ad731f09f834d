package router

import (
	"net/http"

	"github.com/deppfellow/pickboard/internal/handler"
	"github.com/labstack/echo/v4"
)

func registerProfileRoutes(g *echo.Group, h *handler.ProfileHandler) {
	g.GET("/me", handler.Handle(h.Handler, h.GetMe, http.StatusOK, &handler.EmptyRequest{}))
	g.PUT("/me", handler.Handle(h.Handler, h.UpdateMe, http.StatusOK, &handler.UpdateProfileRequest{}))
	g.GET("/profiles/:user_id", handler.Handle(h.Handler, h.GetProfile, http.StatusOK, &handler.GetProfileRequest{}))
}

func registerNoteRoutes(g *echo.Group, h *handler.NoteHandler) {
	notes := g.Group("/notes")

	notes.POST("", handler.Handle(h.Handler, h.CreateNote, http.StatusCreated, &handler.CreateNoteRequest{}))
	notes.GET("", handler.Handle(h.Handler, h.ListMyNotes, http.StatusOK, &handler.ListNotesRequest{}))
	notes.GET("/all", handler.Handle(h.Handler, h.ListAllNotes, http.StatusOK, &handler.ListNotesRequest{}))
	notes.GET("/user/:user_id", handler.Handle(h.Handler, h.ListUserNotes, http.StatusOK, &handler.ListUserNotesRequest{}))
	notes.DELETE("/:id", handler.HandleNoContent(h.Handler, h.DeleteNote, http.StatusNoContent, &handler.NoteIDRequest{}))

	notes.POST("/:id/comments", handler.Handle(h.Handler, h.AddComment, http.StatusCreated, &handler.AddCommentRequest{}))
	notes.POST("/:id/like", handler.Handle(h.Handler, h.Like, http.StatusOK, &handler.NoteIDRequest{}))
	notes.POST("/:id/dislike", handler.Handle(h.Handler, h.Dislike, http.StatusOK, &handler.NoteIDRequest{}))
	notes.GET("/:id/liked-by", handler.Handle(h.Handler, h.LikedBy, http.StatusOK, &handler.NoteIDRequest{}))
	notes.GET("/:id/disliked-by", handler.Handle(h.Handler, h.DislikedBy, http.StatusOK, &handler.NoteIDRequest{}))
}

func registerTournamentRoutes(g *echo.Group, h *handler.TournamentHandler) {
	tournaments := g.Group("/tournaments")

	tournaments.POST("", handler.Handle(h.Handler, h.Create, http.StatusCreated, &handler.CreateTournamentRequest{}))
	tournaments.GET("", handler.Handle(h.Handler, h.List, http.StatusOK, &handler.ListTournamentsRequest{}))
	tournaments.GET("/:id", handler.Handle(h.Handler, h.Get, http.StatusOK, &handler.TournamentIDRequest{}))
	tournaments.DELETE("/:id", handler.HandleNoContent(h.Handler, h.Delete, http.StatusNoContent, &handler.TournamentIDRequest{}))

	tournaments.PUT("/:id/actual-bracket", handler.Handle(h.Handler, h.UpdateActualBracket, http.StatusOK, &handler.BracketRequest{}))
	tournaments.POST("/:id/recalculate", handler.Handle(h.Handler, h.Recalculate, http.StatusOK, &handler.TournamentIDRequest{}))

	tournaments.POST("/:id/predictions", handler.Handle(h.Handler, h.SubmitPrediction, http.StatusOK, &handler.BracketRequest{}))
	tournaments.GET("/:id/predictions/me", handler.Handle(h.Handler, h.GetMyPrediction, http.StatusOK, &handler.TournamentIDRequest{}))

	tournaments.GET("/:id/leaderboard", handler.Handle(h.Handler, h.Leaderboard, http.StatusOK, &handler.TournamentIDRequest{}))
	tournaments.GET("/:id/leaderboard/export", handler.HandleFile(h.Handler, h.ExportLeaderboard, http.StatusOK,
		&handler.TournamentIDRequest{}, "leaderboard.csv", "text/csv"))
}
