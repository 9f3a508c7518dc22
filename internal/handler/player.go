package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/statify/statify/internal/model"
	"github.com/statify/statify/internal/repository"
)

// PlayerHandler covers player registration, stat edits, lookups and the
// leaderboard reads.
type PlayerHandler struct {
	Players   *repository.PlayerRepo
	UploadDir string // destination for uploaded player photos
}

// Create handles POST /api/players.  The form is multipart so a photo
// can ride along; name and team are required, stat fields default to
// zero.  When no explicit average is given and matches > 0 it is
// derived as runs/matches.
func (h *PlayerHandler) Create(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	team := strings.TrimSpace(c.FormValue("team"))
	if name == "" || team == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Player name and team are required."})
	}

	p := model.Player{Name: name, Team: team}
	var err error
	if p.Runs, err = formInt(c, "runs"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid runs"})
	}
	if p.Wickets, err = formInt(c, "wickets"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid wickets"})
	}
	if p.Sixes, err = formInt(c, "sixes"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sixes"})
	}
	if p.Hundreds, err = formInt(c, "hundreds"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hundreds"})
	}
	if p.Matches, err = formInt(c, "matches"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid matches"})
	}
	if p.StrikeRate, err = formFloat(c, "strike_rate"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid strike_rate"})
	}
	avg, err := formFloat(c, "average")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid average"})
	}
	switch {
	case avg != 0:
		p.Average = avg
	case p.Matches > 0:
		p.Average = float64(int64(float64(p.Runs)/float64(p.Matches)*100+0.5)) / 100
	}

	// A photo can arrive either as an uploaded file or as a photo_url
	// pointing at an existing image; the file wins when both are sent.
	if raw := strings.TrimSpace(c.FormValue("photo_url")); raw != "" {
		p.PhotoURL = &raw
	}
	if file, ferr := c.FormFile("photo"); ferr == nil && file != nil {
		url, serr := h.savePhoto(file)
		if serr != nil {
			return internalError(c, "player-photo", serr)
		}
		p.PhotoURL = &url
	}

	created, err := h.Players.Create(c.Request().Context(), p)
	if err != nil {
		return internalError(c, "player-create", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Player added successfully!",
		"player":  created,
	})
}

// Get handles GET /api/players/:id.
func (h *PlayerHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid player id"})
	}
	p, err := h.Players.GetByID(c.Request().Context(), id)
	if err == repository.ErrPlayerNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Player not found."})
	}
	if err != nil {
		return internalError(c, "player-get", err)
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateStats handles PUT /api/players/:id (admin).  The body is a
// partial update; omitted fields keep their current values.  A photo
// may be replaced through the same multipart form.
func (h *PlayerHandler) UpdateStats(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid player id"})
	}

	var changes repository.StatChanges
	if changes.Runs, err = formIntPtr(c, "runs"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid runs"})
	}
	if changes.Wickets, err = formIntPtr(c, "wickets"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid wickets"})
	}
	if changes.Sixes, err = formIntPtr(c, "sixes"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sixes"})
	}
	if changes.Hundreds, err = formIntPtr(c, "hundreds"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hundreds"})
	}
	if changes.Matches, err = formIntPtr(c, "matches"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid matches"})
	}
	if changes.Average, err = formFloatPtr(c, "average"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid average"})
	}
	if changes.StrikeRate, err = formFloatPtr(c, "strike_rate"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid strike_rate"})
	}
	if file, ferr := c.FormFile("photo"); ferr == nil && file != nil {
		url, serr := h.savePhoto(file)
		if serr != nil {
			return internalError(c, "player-photo", serr)
		}
		changes.PhotoURL = &url
	}
	if changes.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No fields to update."})
	}

	updated, err := h.Players.UpdateStats(c.Request().Context(), id, changes, adminUsername(c))
	if err == repository.ErrPlayerNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Player not found."})
	}
	if err != nil {
		return internalError(c, "player-update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Player updated successfully!",
		"player":  updated,
	})
}

// Leaderboard handles GET /api/leaderboards/:stat.  The stat must be one
// of the whitelisted columns; anything else is a 400 before the query
// runs.
func (h *PlayerHandler) Leaderboard(c echo.Context) error {
	stat := c.Param("stat")
	if !repository.StatAllowed(stat) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid statistic requested for leaderboard."})
	}
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, perr := strconv.Atoi(raw); perr == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	players, err := h.Players.Leaderboard(c.Request().Context(), stat, limit)
	if err != nil {
		return internalError(c, "leaderboard", err)
	}
	if players == nil {
		players = []model.Player{}
	}
	return c.JSON(http.StatusOK, players)
}

// Allrounders handles GET /api/leaderboards/allrounders: players with
// both runs and wickets ranked by the weighted composite score.
func (h *PlayerHandler) Allrounders(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, perr := strconv.Atoi(raw); perr == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	entries, err := h.Players.Allrounders(c.Request().Context(), limit)
	if err != nil {
		return internalError(c, "allrounders", err)
	}
	if entries == nil {
		entries = []repository.AllrounderEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// savePhoto stores an uploaded photo under the upload directory and
// returns the public path it will be served from.  The stored filename
// is timestamp-prefixed so repeated uploads of the same file never
// clobber each other.
func (h *PlayerHandler) savePhoto(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(file.Filename))
	dst, err := os.Create(filepath.Join(h.UploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

// formInt parses an optional numeric form field, returning 0 when the
// field is absent or blank.
func formInt(c echo.Context, field string) (int64, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func formFloat(c echo.Context, field string) (float64, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// formIntPtr is the partial-update variant: absent means nil, present
// means a value to apply.
func formIntPtr(c echo.Context, field string) (*int64, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func formFloatPtr(c echo.Context, field string) (*float64, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
