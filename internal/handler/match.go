package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/statify/statify/internal/model"
	"github.com/statify/statify/internal/repository"
)

// standLabels are the stands every match is created with.  The per-stand
// capacity is configurable; the label set is fixed, matching the ticket
// page layout.
var standLabels = []string{"North Stand", "East Stand", "West Stand"}

// MatchHandler bundles the repositories needed to schedule and list
// matches.  Scheduling creates the match and its stands in one
// transaction so a match without ticket pools can never be observed.
type MatchHandler struct {
	MatchRepo     *repository.MatchRepo
	StandRepo     *repository.StandRepo
	StandCapacity int // tickets per stand for newly scheduled matches
}

// startTimeLayouts are the accepted start_time formats: RFC3339 plus
// the zone-less strings an HTML datetime-local input submits.  Zone-less
// values are taken as UTC.
var startTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseStartTime(raw string) (time.Time, error) {
	for _, layout := range startTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized start time %q", raw)
}

// Create handles POST /api/matches (admin).  team1, team2 and
// start_time are required; venue is optional.
func (h *MatchHandler) Create(c echo.Context) error {
	var body struct {
		Team1     string `json:"team1" form:"team1"`
		Team2     string `json:"team2" form:"team2"`
		Venue     string `json:"venue" form:"venue"`
		StartTime string `json:"start_time" form:"start_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	team1 := strings.TrimSpace(body.Team1)
	team2 := strings.TrimSpace(body.Team2)
	startRaw := strings.TrimSpace(body.StartTime)
	if team1 == "" || team2 == "" || startRaw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Team 1, Team 2, and Start Time are required."})
	}
	startTime, err := parseStartTime(startRaw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time format"})
	}

	match := &model.Match{
		Team1:     team1,
		Team2:     team2,
		StartTime: startTime.UTC(),
		CreatedBy: adminUsername(c),
	}
	if venue := strings.TrimSpace(body.Venue); venue != "" {
		match.Venue = &venue
	}

	ctx := c.Request().Context()
	tx, err := h.MatchRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return internalError(c, "match-create", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.MatchRepo.CreateTx(ctx, tx, match); err != nil {
		return internalError(c, "match-create", err)
	}
	stands := make([]model.Stand, 0, len(standLabels))
	for _, label := range standLabels {
		stands = append(stands, model.Stand{
			MatchID: match.ID,
			Stand:   label,
			Total:   int64(h.StandCapacity),
		})
	}
	if err := h.StandRepo.CreateBulkTx(ctx, tx, stands); err != nil {
		return internalError(c, "match-create", err)
	}
	if err := tx.Commit(); err != nil {
		return internalError(c, "match-create", err)
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Match scheduled successfully!",
		"match":   match,
	})
}

// List handles GET /api/matches (public), ordered by start time.
func (h *MatchHandler) List(c echo.Context) error {
	matches, err := h.MatchRepo.List(c.Request().Context())
	if err != nil {
		return internalError(c, "match-list", err)
	}
	if matches == nil {
		matches = []model.Match{}
	}
	return c.JSON(http.StatusOK, matches)
}
