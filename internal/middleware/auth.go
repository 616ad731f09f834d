package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/pickboard/internal/errs"
	"github.com/deppfellow/pickboard/internal/model"
	"github.com/deppfellow/pickboard/internal/server"
	"github.com/labstack/echo/v4"
)

// ProfileEnsurer creates the caller's profile on first use.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, userID string) (*model.Profile, error)
}

type AuthMiddleware struct {
	server   *server.Server
	profiles ProfileEnsurer
}

func NewAuthMiddleware(s *server.Server, profiles ProfileEnsurer) *AuthMiddleware {
	return &AuthMiddleware{
		server:   s,
		profiles: profiles,
	}
}

// RequireAuth verifies the Clerk session in the Authorization header, puts
// the user id into the Echo context and request logger, and makes sure the
// user has a profile.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized)),
		))(func(c echo.Context) error {
		claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
		if !ok {
			GetLogger(c).Error().
				Str("function", "RequireAuth").
				Msg("could not get session claims from context")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		return auth.authenticated(c, claims.Subject, next)
	})
}

// authenticated finishes a request whose session has been verified.
func (auth *AuthMiddleware) authenticated(c echo.Context, userID string, next echo.HandlerFunc) error {
	start := time.Now()

	c.Set(UserIDKey, userID)
	setLogger(c, GetLogger(c).With().Str("user_id", userID).Logger())

	if _, err := auth.profiles.EnsureProfile(c.Request().Context(), userID); err != nil {
		return err
	}

	GetLogger(c).Debug().
		Str("function", "RequireAuth").
		Dur("duration", time.Since(start)).
		Msg("user authenticated successfully")

	return next(c)
}

func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(http.StatusUnauthorized)

	err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false))
	if err != nil {
		auth.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Msg("rejected request without a valid session")
}
