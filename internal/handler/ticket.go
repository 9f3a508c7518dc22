package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/statify/statify/internal/repository"
)

// TicketHandler serves the public ticket availability listing.
type TicketHandler struct {
	MatchRepo *repository.MatchRepo
}

// List handles GET /api/tickets: every match with the per-stand
// availability the booking page renders.  Counts reflect committed
// bookings only; an in-flight booking's decrement is invisible until
// its transaction commits.
func (h *TicketHandler) List(c echo.Context) error {
	items, err := h.MatchRepo.ListWithStands(c.Request().Context())
	if err != nil {
		return internalError(c, "ticket-list", err)
	}
	if items == nil {
		items = []repository.MatchTickets{}
	}
	return c.JSON(http.StatusOK, items)
}
