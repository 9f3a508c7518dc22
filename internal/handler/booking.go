package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/statify/statify/internal/model"
	"github.com/statify/statify/internal/repository"
	"github.com/statify/statify/internal/service"
)

// TicketBooker is the booking transaction coordinator as the handler
// sees it.  Tests substitute a double; production wiring passes
// *service.BookingService.
type TicketBooker interface {
	Book(ctx context.Context, req service.BookingRequest) (service.BookingResult, error)
}

// BookingHandler exposes the booking endpoint and the reporting reads
// over booking records.
type BookingHandler struct {
	Booker   TicketBooker
	Bookings *repository.BookingRepo // reporting reads; nil disables the listing routes
}

// Book handles POST /api/tickets/:matchId/book.  The request carries the
// stand label plus the buyer's name and phone; the response echoes the
// booking id, the stand's post-decrement availability and who the
// ticket was booked for.
//
// Status mapping: validation failures and a sold out stand are 400, an
// unknown stand for the match is 404, anything else is a generic 500.
func (h *BookingHandler) Book(c echo.Context) error {
	matchID, err := strconv.ParseUint(c.Param("matchId"), 10, 64)
	if err != nil || matchID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid match id"})
	}
	var body struct {
		Stand string `json:"stand" form:"stand"`
		Name  string `json:"name" form:"name"`
		Phone string `json:"phone" form:"phone"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Booker.Book(c.Request().Context(), service.BookingRequest{
		MatchID: matchID,
		Stand:   body.Stand,
		Name:    body.Name,
		Phone:   body.Phone,
	})
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
		case errors.Is(err, repository.ErrStandNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Ticket stand not found for this match."})
		case errors.Is(err, repository.ErrSoldOut):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Stand sold out."})
		default:
			return internalError(c, "booking", err)
		}
	}

	// bookedFor echoes the submitted name.  On a repeat booking the
	// stored User row may carry a different name; that row is not
	// updated, but the response reflects what this request sent.
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Ticket booked successfully!",
		"bookingId": res.Booking.ID,
		"ticket":    res.Stand,
		"bookedFor": strings.TrimSpace(body.Name),
		"phone":     res.User.Phone,
	})
}

// ListByMatch handles GET /api/matches/:id/bookings (admin reporting).
func (h *BookingHandler) ListByMatch(c echo.Context) error {
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || matchID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid match id"})
	}
	bookings, err := h.Bookings.ListByMatch(c.Request().Context(), matchID)
	if err != nil {
		return internalError(c, "booking-list", err)
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}
