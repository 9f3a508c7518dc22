package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStartTimeLayouts(t *testing.T) {
	// Full RFC3339 with a zone.
	ts, err := parseStartTime("2026-09-15T18:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC), ts.UTC())

	// datetime-local inputs submit without a zone, with or without
	// seconds; both must be accepted.
	ts, err = parseStartTime("2026-09-15T18:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC), ts.UTC())

	ts, err = parseStartTime("2026-09-15T18:00:30")
	require.NoError(t, err)
	assert.Equal(t, 30, ts.Second())

	for _, raw := range []string{"", "next tuesday", "15/09/2026 18:00"} {
		_, err := parseStartTime(raw)
		assert.Error(t, err, raw)
	}
}

func performMatchCreate(t *testing.T, h *MatchHandler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/matches", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Create(e.NewContext(req, rec)))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestMatchCreateValidation(t *testing.T) {
	// Validation runs before any repository access, so an empty handler
	// is enough to cover the rejection paths.
	h := &MatchHandler{}

	rec, payload := performMatchCreate(t, h, `{"team1":"India","start_time":"2026-09-15T18:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Team 1, Team 2, and Start Time are required.", payload["error"])

	rec, payload = performMatchCreate(t, h, `{"team1":"India","team2":"Australia","start_time":"someday"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid start_time format", payload["error"])
}
