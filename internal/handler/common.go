package handler // handler defines http handlers

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// internalError logs the underlying error with a short correlation id
// and answers a generic 500.  No internal detail crosses the wire; the
// ref lets a user report a failure that can be matched against the
// server log.
func internalError(c echo.Context, scope string, err error) error {
	ref := correlationRef()
	log.Printf("%s: ref=%s err=%v", scope, ref, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": "internal server error",
		"ref":   ref,
	})
}

// correlationRef returns 8 random hex characters.  Collisions are
// harmless; the ref only narrows a log search.
func correlationRef() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b[:])
}

// adminUsername extracts the admin name stored by JWTAuth, falling back
// to a marker string for audit rows when the claim is missing.
func adminUsername(c echo.Context) string {
	if v, ok := c.Get("username").(string); ok && v != "" {
		return v
	}
	return "unknown_admin"
}
