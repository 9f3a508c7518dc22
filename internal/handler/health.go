package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness plus a cheap database check for load
// balancers and uptime monitors.
type HealthHandler struct {
	DB *sql.DB
}

// Health answers GET /healthz.  The response is 200 even when the
// database ping fails so a flapping DB does not take the static pages
// down with it; the db field tells the monitor what is going on.
func (h *HealthHandler) Health(c echo.Context) error {
	dbState := "disabled"
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err == nil {
			dbState = "connected"
		} else {
			dbState = "error"
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "db": dbState})
}
