package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rently/rently-api/internal/config"
	"github.com/rently/rently-api/internal/domain/block"
	"github.com/rently/rently-api/internal/domain/booking"
	"github.com/rently/rently-api/internal/domain/cart"
	"github.com/rently/rently-api/internal/domain/notice"
	"github.com/rently/rently-api/internal/domain/realtime"
	"github.com/rently/rently-api/internal/domain/wishlist"
	"github.com/rently/rently-api/internal/middleware"
	"github.com/rently/rently-api/internal/pkg/cache"
	"github.com/rently/rently-api/internal/pkg/database"
	"github.com/rently/rently-api/internal/pkg/jwt"
	"github.com/rently/rently-api/internal/pkg/logger"
	"github.com/rently/rently-api/internal/pkg/marketplace"
	"github.com/rently/rently-api/internal/pkg/mutation"
	"github.com/rently/rently-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Rently API")

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret)

	marketplaceClient := marketplace.NewClient(
		cfg.MarketplaceBaseURL,
		marketplace.StaticToken(cfg.MarketplaceToken),
		time.Duration(cfg.MarketplaceTimeoutSeconds)*time.Second,
		"rently-api/1.0",
	)

	// ---------- Engine ----------
	engine := mutation.NewEngine(cache.NewStore(), notice.NewCenter())

	// ---------- Services ----------
	cartStore := cart.NewRedisStore(redis, cfg.OfflineCartTTL)
	cartService := cart.NewService(cartStore, marketplaceClient, engine)
	bookingService := booking.NewService(marketplaceClient, engine)
	blockService := block.NewService(marketplaceClient, engine)
	wishlistService := wishlist.NewService(marketplaceClient, engine)

	// ---------- Realtime channel ----------
	realtimeCtx, stopRealtime := context.WithCancel(context.Background())
	defer stopRealtime()
	var realtimeClient *realtime.Client
	if cfg.RealtimeEnabled {
		realtimeClient = realtime.NewClient(cfg.RealtimeURL, engine, cartService, cfg.RealtimeReconnect)
		go realtimeClient.Run(realtimeCtx)
	} else {
		log.Warn().Msg("Realtime channel disabled; cached reads only refresh on mutation")
	}

	// ---------- Handlers ----------
	cartHandler := cart.NewHandler(cartService)
	bookingHandler := booking.NewHandler(bookingService)
	blockHandler := block.NewHandler(blockService)
	wishlistHandler := wishlist.NewHandler(wishlistService)
	noticeHandler := notice.NewHandler(engine.Notices())

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Get("/ws/status", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]bool{
			"enabled":   cfg.RealtimeEnabled,
			"connected": realtimeClient != nil && realtimeClient.Connected(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session)
		r.Use(authMiddleware)

		r.Get("/availability/{studioID}", bookingHandler.Availability)

		r.Mount("/cart", cartHandler.Routes())
		r.Mount("/bookings", bookingHandler.Routes())
		r.Mount("/blocks", blockHandler.Routes())
		r.Mount("/wishlist", wishlistHandler.Routes())
		r.Mount("/notices", noticeHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stopRealtime()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
