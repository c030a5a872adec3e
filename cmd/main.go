package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/maxwellyoung/cinesync/internal/config"
	"github.com/maxwellyoung/cinesync/internal/database"
	"github.com/maxwellyoung/cinesync/internal/handler"
	"github.com/maxwellyoung/cinesync/internal/middleware"
	"github.com/maxwellyoung/cinesync/internal/openai"
	"github.com/maxwellyoung/cinesync/internal/repository"
	"github.com/maxwellyoung/cinesync/internal/service"
	"github.com/maxwellyoung/cinesync/internal/tmdb"
)

func main() {
	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (non-fatal if unavailable)
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache", "error", err)
	}

	// External clients
	tmdbClient := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL)
	modelClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	suggestionRepo := repository.NewSuggestionRepository(db)

	// Services
	userSvc := service.NewUserService(userRepo, rdb)
	friendSvc := service.NewFriendService(friendRepo, userRepo)
	watchlistSvc := service.NewWatchlistService(watchlistRepo, friendRepo, rdb)
	discoverSvc := service.NewDiscoverService(modelClient, tmdbClient, watchlistRepo, userRepo, suggestionRepo, rdb)

	// Handlers
	userHandler := handler.NewUserHandler(userSvc)
	discoverHandler := handler.NewDiscoverHandler(discoverSvc, userSvc)
	watchlistHandler := handler.NewWatchlistHandler(watchlistSvc, userSvc)
	friendHandler := handler.NewFriendHandler(friendSvc, userSvc)
	searchHandler := handler.NewSearchHandler(tmdbClient)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CineSync Backend",
		ServerHeader: "CineSync",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.AuthMiddleware())

	rateLimiter := middleware.NewRateLimiter(rdb, cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSec)

	// Routes
	app.Get("/health", handler.Health)

	api := app.Group("/api/v1")

	discover := api.Group("/discover")
	discover.Post("/generate", discoverHandler.Generate, rateLimiter.Handler())
	discover.Post("/suggestions", discoverHandler.SuggestPrompts, rateLimiter.Handler())
	discover.Delete("/sessions/:id", discoverHandler.ResetSession)

	api.Get("/search", searchHandler.Search)

	api.Post("/users/sync", userHandler.Sync)
	api.Get("/users/me", userHandler.Me)

	api.Get("/watchlist", watchlistHandler.List)
	api.Post("/watchlist", watchlistHandler.Add)
	api.Delete("/watchlist/:movieId", watchlistHandler.Remove)
	api.Patch("/watchlist/:movieId/status", watchlistHandler.SetStatus)
	api.Get("/watchlist/combined/:friendId", watchlistHandler.ListCombined)

	api.Get("/friends", friendHandler.List)
	api.Post("/friends/requests", friendHandler.Invite)
	api.Get("/friends/requests", friendHandler.PendingRequests)
	api.Post("/friends/requests/:id/accept", friendHandler.Accept)
	api.Delete("/friends/:friendId", friendHandler.Remove)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		slog.Info("starting cinesync backend", "addr", addr)
		if err := app.Listen(addr); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down cinesync backend")
	_ = app.Shutdown()
}
