package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statify/statify/internal/model"
	"github.com/statify/statify/internal/repository"
	"github.com/statify/statify/internal/service"
)

// stubBooker returns canned results so the handler's status mapping can
// be tested without a database.
type stubBooker struct {
	res service.BookingResult
	err error
	got service.BookingRequest
}

func (s *stubBooker) Book(ctx context.Context, req service.BookingRequest) (service.BookingResult, error) {
	s.got = req
	return s.res, s.err
}

func performBooking(t *testing.T, booker *stubBooker, matchID, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/"+matchID+"/book", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/tickets/:matchId/book")
	c.SetParamNames("matchId")
	c.SetParamValues(matchID)

	h := &BookingHandler{Booker: booker}
	require.NoError(t, h.Book(c))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestBookSuccessResponse(t *testing.T) {
	booker := &stubBooker{res: service.BookingResult{
		Booking: model.Booking{ID: 42, MatchID: 7, StandID: 3, Stand: "North Stand"},
		Stand:   model.Stand{ID: 3, MatchID: 7, Stand: "North Stand", Total: 10, Available: 9},
		User:    model.User{ID: 1, PublicID: "USER_00042", Name: "Rahul", Phone: "9876543210"},
	}}

	rec, payload := performBooking(t, booker, "7", `{"stand":"North Stand","name":"Rahul","phone":"9876543210"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ticket booked successfully!", payload["message"])
	assert.Equal(t, float64(42), payload["bookingId"])
	assert.Equal(t, "Rahul", payload["bookedFor"])
	assert.Equal(t, "9876543210", payload["phone"])

	ticket, ok := payload["ticket"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "North Stand", ticket["stand"])
	assert.Equal(t, float64(9), ticket["available"])

	// The handler passes the parsed match id through untouched.
	assert.Equal(t, uint64(7), booker.got.MatchID)
}

func TestBookEchoesSubmittedNameOnRepeatBooking(t *testing.T) {
	// A repeat booking resolves to the stored user, whose name can
	// differ from the one in this request.  The User row keeps its
	// original name; bookedFor reflects the submitted one.
	booker := &stubBooker{res: service.BookingResult{
		Booking: model.Booking{ID: 43, MatchID: 7, StandID: 3, Stand: "East Stand"},
		Stand:   model.Stand{ID: 3, MatchID: 7, Stand: "East Stand", Total: 10, Available: 8},
		User:    model.User{ID: 1, PublicID: "USER_00042", Name: "Asha", Phone: "9876543210"},
	}}

	rec, payload := performBooking(t, booker, "7", `{"stand":"East Stand","name":"Someone Else","phone":"9876543210"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Someone Else", payload["bookedFor"])
	assert.Equal(t, "9876543210", payload["phone"])
}

func TestBookValidationErrorIs400(t *testing.T) {
	booker := &stubBooker{err: &service.ValidationError{Msg: "Stand is required."}}

	rec, payload := performBooking(t, booker, "7", `{"name":"Rahul","phone":"9876543210"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Stand is required.", payload["error"])
}

func TestBookUnknownStandIs404(t *testing.T) {
	booker := &stubBooker{err: repository.ErrStandNotFound}

	rec, payload := performBooking(t, booker, "7", `{"stand":"Moon Stand","name":"Rahul","phone":"9876543210"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Ticket stand not found for this match.", payload["error"])
}

func TestBookSoldOutIs400(t *testing.T) {
	booker := &stubBooker{err: repository.ErrSoldOut}

	rec, payload := performBooking(t, booker, "7", `{"stand":"North Stand","name":"Rahul","phone":"9876543210"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Stand sold out.", payload["error"])
}

func TestBookUnexpectedErrorIs500(t *testing.T) {
	booker := &stubBooker{err: errors.New("connection reset")}

	rec, payload := performBooking(t, booker, "7", `{"stand":"North Stand","name":"Rahul","phone":"9876543210"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// The raw error never leaks to the client, only a reference id.
	assert.Equal(t, "internal server error", payload["error"])
	assert.NotEmpty(t, payload["ref"])
}

func TestBookInvalidMatchIDIs400(t *testing.T) {
	booker := &stubBooker{}

	rec, payload := performBooking(t, booker, "abc", `{"stand":"North Stand","name":"Rahul","phone":"9876543210"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid match id", payload["error"])
	// The booker must not be reached with a garbage id.
	assert.Zero(t, booker.got.MatchID)
}
