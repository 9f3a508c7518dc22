package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/statify/statify/internal/handler"    // import the handlers that implement business logic
	"github.com/statify/statify/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// Handlers bundles every handler the route table needs.  main wires the
// concrete instances; tests can register a subset against a fresh Echo.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Match   *handler.MatchHandler
	Ticket  *handler.TicketHandler
	Booking *handler.BookingHandler
	Player  *handler.PlayerHandler
	News    *handler.NewsHandler
}

// Middlewares carries the optional cross-cutting middleware.  Any nil
// entry simply is not applied, which is how the site runs without Redis.
type Middlewares struct {
	Cache     echo.MiddlewareFunc // response cache for public reads
	RateLimit echo.MiddlewareFunc // token bucket in front of booking
}

// RegisterRoutes registers health and monitoring routes on the provided
// Echo instance.
func RegisterRoutes(e *echo.Echo, hh *handler.HealthHandler) {
	// Load balancers and uptime monitors probe this endpoint.
	e.GET("/healthz", hh.Health)
}

// RegisterPublic registers the unauthenticated API surface: login,
// match and ticket listings, player reads, leaderboards and the news
// proxy.  The cache middleware, when present, fronts the read-heavy
// endpoints only; login and player creation must never be cached.
func RegisterPublic(e *echo.Echo, h Handlers, mw Middlewares) {
	api := e.Group("/api")

	// Admin session bootstrap.  The rest of the admin surface lives in
	// RegisterAdmin behind JWT middleware.
	api.POST("/login", h.Auth.Login)

	// Read endpoints.  These are the hot paths on match days, so the
	// Redis response cache is applied when configured.
	reads := api.Group("")
	if mw.Cache != nil {
		reads.Use(mw.Cache)
	}
	reads.GET("/matches", h.Match.List)
	reads.GET("/tickets", h.Ticket.List)
	reads.GET("/players/:id", h.Player.Get)
	// The allrounders route must be registered before the :stat route
	// so Echo does not treat "allrounders" as a stat name.
	reads.GET("/leaderboards/allrounders", h.Player.Allrounders)
	reads.GET("/leaderboards/:stat", h.Player.Leaderboard)
	reads.GET("/news", h.News.List)

	// Player registration is open to the public on this site.  It is a
	// multipart form because of the photo upload.
	api.POST("/players", h.Player.Create)

	// The booking endpoint takes the rate limiter so retry storms from
	// a single client cannot monopolize the stand row lock.
	if mw.RateLimit != nil {
		api.POST("/tickets/:matchId/book", h.Booking.Book, mw.RateLimit)
	} else {
		api.POST("/tickets/:matchId/book", h.Booking.Book)
	}
}

// RegisterAdmin registers the endpoints that require an admin token:
// match scheduling, player stat edits and booking reports.  All of them
// run the JWTAuth middleware followed by a role check.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	admin := e.Group("/api")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))

	admin.POST("/matches", h.Match.Create)
	admin.PUT("/players/:id", h.Player.UpdateStats)
	admin.GET("/matches/:id/bookings", h.Booking.ListByMatch)
}

// RegisterStatic serves uploaded player photos from the upload
// directory under the /uploads prefix.
func RegisterStatic(e *echo.Echo, uploadDir string) {
	e.Static("/uploads", uploadDir)
}
