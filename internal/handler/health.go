package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/pickboard/internal/middleware"
	"github.com/deppfellow/pickboard/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const defaultHealthCheckTimeout = 5 * time.Second

type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type dependencyCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                     `json:"status"`
	Timestamp   time.Time                  `json:"timestamp"`
	Environment string                     `json:"environment"`
	Checks      map[string]dependencyCheck `json:"checks"`
}

func (h *HealthHandler) enabled(name string) bool {
	obs := h.server.Config.Observability
	return obs == nil || obs.HealthCheckEnabled(name)
}

func (h *HealthHandler) timeout() time.Duration {
	if obs := h.server.Config.Observability; obs != nil && obs.HealthChecks.Timeout > 0 {
		return obs.HealthChecks.Timeout
	}
	return defaultHealthCheckTimeout
}

// CheckHealth pings the dependencies enabled in the observability config.
// Postgres is required; a Redis failure is reported but only degrades the
// leaderboard cache.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]dependencyCheck),
	}

	ctx := c.Request().Context()

	healthy := true
	if h.enabled("database") {
		dbCheck := h.check(ctx, &logger, "database", h.server.DB.Pool.Ping)
		response.Checks["database"] = dbCheck
		healthy = dbCheck.Status == "healthy"
	}

	if h.server.Redis != nil && h.enabled("redis") {
		response.Checks["redis"] = h.check(ctx, &logger, "redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
	}

	if !healthy {
		response.Status = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		h.recordFailure(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Info().Dur("total_duration", time.Since(start)).Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

func (h *HealthHandler) check(ctx context.Context, logger *zerolog.Logger, name string, ping func(context.Context) error) dependencyCheck {
	ctx, cancel := context.WithTimeout(ctx, h.timeout())
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error().Err(err).Dur("response_time", elapsed).Msgf("%s health check failed", name)
		h.recordFailure(map[string]interface{}{
			"check_type":       name,
			"operation":        "health_check",
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
		return dependencyCheck{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}
	}

	logger.Debug().Dur("response_time", elapsed).Msgf("%s health check passed", name)
	return dependencyCheck{Status: "healthy", ResponseTime: elapsed.String()}
}

func (h *HealthHandler) recordFailure(attrs map[string]interface{}) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attrs)
}
