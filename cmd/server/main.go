package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/statify/statify/internal/config"
	"github.com/statify/statify/internal/database"
	"github.com/statify/statify/internal/handler"
	"github.com/statify/statify/internal/middleware"
	"github.com/statify/statify/internal/queue"
	"github.com/statify/statify/internal/repository"
	"github.com/statify/statify/internal/router"
	"github.com/statify/statify/internal/service"
)

func main() {
	// Load .env when present; in production the variables come from the
	// process environment and the file simply does not exist.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Create the schema on startup so a fresh database works without a
	// separate migration step.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Bootstrap(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema bootstrap: %v", err)
	}
	cancel()

	// Redis is optional: a nil client turns the cache and rate limiter
	// into pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	userRepo := repository.NewUserRepo(db)
	standRepo := repository.NewStandRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	matchRepo := repository.NewMatchRepo(db)
	playerRepo := repository.NewPlayerRepo(db)

	publisher := service.NewAMQPPublisher()
	bookingSvc := service.NewBookingService(db, userRepo, standRepo, bookingRepo, publisher)

	h := router.Handlers{
		Health: &handler.HealthHandler{DB: db},
		Auth: &handler.AuthHandler{
			AdminUsername:     cfg.AdminUsername,
			AdminPasswordHash: cfg.AdminPasswordHash,
			JWTSecret:         cfg.JWTSecret,
			AccessTTLMin:      cfg.AccessTTLMin,
		},
		Match: &handler.MatchHandler{
			MatchRepo:     matchRepo,
			StandRepo:     standRepo,
			StandCapacity: cfg.StandCapacity,
		},
		Ticket:  &handler.TicketHandler{MatchRepo: matchRepo},
		Booking: &handler.BookingHandler{Booker: bookingSvc, Bookings: bookingRepo},
		Player:  &handler.PlayerHandler{Players: playerRepo, UploadDir: cfg.UploadDir},
		News:    handler.NewNewsHandler(cfg.NewsAPIURL, cfg.NewsAPIKey),
	}
	mw := router.Middlewares{
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	}

	e := echo.New()
	router.RegisterRoutes(e, h.Health)
	router.RegisterPublic(e, h, mw)
	router.RegisterAdmin(e, h, cfg.JWTSecret)
	router.RegisterStatic(e, cfg.UploadDir)

	// The consumer appends confirmed bookings to logs/booking.log.  It
	// reconnects on its own, so a broker restart does not kill the API.
	go queue.StartBookingConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
