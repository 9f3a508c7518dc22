package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statify/statify/internal/utils"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := utils.HashPassword("s3cret-pass", 10)
	require.NoError(t, err)
	return &AuthHandler{
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
		JWTSecret:         "test-secret",
		AccessTTLMin:      15,
	}
}

func performLogin(t *testing.T, a *AuthHandler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, a.Login(e.NewContext(req, rec)))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestLoginIssuesAdminToken(t *testing.T) {
	a := newAuthHandler(t)

	rec, payload := performLogin(t, a, `{"username":"admin","password":"s3cret-pass"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	tokenStr, _ := payload["access_token"].(string)
	require.NotEmpty(t, tokenStr)

	parsed, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (any, error) {
		return []byte(a.JWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	a := newAuthHandler(t)

	rec, payload := performLogin(t, a, `{"username":"admin","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", payload["error"])
}

func TestLoginRejectsUnknownUsername(t *testing.T) {
	a := newAuthHandler(t)

	rec, payload := performLogin(t, a, `{"username":"root","password":"s3cret-pass"}`)

	// Same 401 as a wrong password so the response does not reveal
	// which half of the credentials was wrong.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", payload["error"])
}

func TestLoginRequiresBothFields(t *testing.T) {
	a := newAuthHandler(t)

	rec, _ := performLogin(t, a, `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = performLogin(t, a, `{"password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
