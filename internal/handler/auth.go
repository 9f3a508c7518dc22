package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/statify/statify/internal/utils"
)

// AuthHandler implements the single-account admin login.  There is no
// registration and no refresh flow: the site has exactly one admin,
// whose username and bcrypt password hash come from the environment.
type AuthHandler struct {
	AdminUsername     string // expected login username
	AdminPasswordHash string // bcrypt hash the password is checked against
	JWTSecret         string // secret used to sign the issued token
	AccessTTLMin      int    // token lifetime in minutes
}

// Login handles POST /api/login.  On valid credentials it answers with
// an HS256 access token carrying role ADMIN; the token gates match
// scheduling and player stat edits.  Invalid credentials always get the
// same 401 regardless of which part was wrong.
func (a *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	if username != a.AdminUsername || !utils.VerifyPassword(a.AdminPasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(a.JWTSecret, username, "ADMIN", a.AccessTTLMin)
	if err != nil {
		return internalError(c, "login", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
	})
}
