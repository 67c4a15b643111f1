package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"eventmanagement/internal/delivery/http/helpers"
)

// Pinger reports whether the database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Counter returns the number of stored records of one kind.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status   string         `json:"status"`
	Database string         `json:"database"`
	Counts   map[string]int `json:"counts,omitempty"`
}

// HealthSuccessResponse is the success envelope for GET /health.
type HealthSuccessResponse struct {
	Data  HealthStatus      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// HealthController reports service liveness and database reachability.
type HealthController struct {
	Logger   *slog.Logger
	DB       Pinger
	Counters map[string]Counter
}

func NewHealthController(logger *slog.Logger, db Pinger, counters map[string]Counter) *HealthController {
	return &HealthController{Logger: logger, DB: db, Counters: counters}
}

// Health godoc
// @Summary Health check
// @Description Reports database reachability and record counts per table.
// @Tags health
// @Produce json
// @Success 200 {object} controllers.HealthSuccessResponse
// @Failure 503 {object} helpers.APIResponse "error.code: internal_error (database unreachable)"
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if err := c.DB.PingContext(r.Context()); err != nil {
		c.Logger.ErrorContext(r.Context(), "health check failed", "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeInternalError, "database unreachable")
		return
	}
	counts := make(map[string]int, len(c.Counters))
	for name, counter := range c.Counters {
		n, err := counter.Count(r.Context())
		if err != nil {
			helpers.WriteServiceError(w, r, c.Logger, err)
			return
		}
		counts[name] = n
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthStatus{Status: "UP", Database: "UP", Counts: counts})
}
