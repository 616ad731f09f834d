package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/pickboard/internal/config"
	"github.com/deppfellow/pickboard/internal/errs"
	"github.com/deppfellow/pickboard/internal/handler"
	"github.com/deppfellow/pickboard/internal/server"
	"github.com/deppfellow/pickboard/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server:  config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
		},
		Logger: &logger,
	}
	services := &service.Services{}
	return NewRouter(s, handler.NewHandlers(s, services), services)
}

func TestRoutesAreRegistered(t *testing.T) {
	r := newTestRouter(t)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /status",
		"GET /docs",
		"GET /api/v1/me",
		"PUT /api/v1/me",
		"GET /api/v1/profiles/:user_id",
		"POST /api/v1/notes",
		"GET /api/v1/notes",
		"GET /api/v1/notes/all",
		"GET /api/v1/notes/user/:user_id",
		"DELETE /api/v1/notes/:id",
		"POST /api/v1/notes/:id/comments",
		"POST /api/v1/notes/:id/like",
		"POST /api/v1/notes/:id/dislike",
		"GET /api/v1/notes/:id/liked-by",
		"GET /api/v1/notes/:id/disliked-by",
		"POST /api/v1/tournaments",
		"GET /api/v1/tournaments",
		"GET /api/v1/tournaments/:id",
		"DELETE /api/v1/tournaments/:id",
		"PUT /api/v1/tournaments/:id/actual-bracket",
		"POST /api/v1/tournaments/:id/recalculate",
		"POST /api/v1/tournaments/:id/predictions",
		"GET /api/v1/tournaments/:id/predictions/me",
		"GET /api/v1/tournaments/:id/leaderboard",
		"GET /api/v1/tournaments/:id/leaderboard/export",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Route not found", body.Message)
}
