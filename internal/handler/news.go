package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// NewsHandler proxies the cricket news feed from the upstream provider
// so the API key never reaches the browser.  When no provider is
// configured the endpoint reports 503 instead of failing mid-request.
type NewsHandler struct {
	APIURL string // upstream query URL without the apiKey parameter
	APIKey string
	Client *http.Client
}

// NewNewsHandler builds a proxy with a bounded request timeout; the
// upstream occasionally stalls and must not tie up server workers.
func NewNewsHandler(apiURL, apiKey string) *NewsHandler {
	return &NewsHandler{
		APIURL: apiURL,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// newsArticle is the slimmed-down article shape the frontend renders.
type newsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
}

// List handles GET /api/news.
func (h *NewsHandler) List(c echo.Context) error {
	if h.APIURL == "" || h.APIKey == "" {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "News service is not configured."})
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, h.APIURL+"&apiKey="+h.APIKey, nil)
	if err != nil {
		return internalError(c, "news", err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		log.Printf("news: upstream request failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch news from external source."})
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("news: upstream status %d", resp.StatusCode)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch news from external source."})
	}

	var upstream struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			URLToImage  string `json:"urlToImage"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&upstream); err != nil {
		return internalError(c, "news", err)
	}

	articles := make([]newsArticle, 0, len(upstream.Articles))
	for _, a := range upstream.Articles {
		articles = append(articles, newsArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Image:       a.URLToImage,
		})
	}
	return c.JSON(http.StatusOK, articles)
}
