package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecoleta/ecoleta-go/internal/config"
	"github.com/ecoleta/ecoleta-go/internal/crypto"
	"github.com/ecoleta/ecoleta-go/internal/handler"
	"github.com/ecoleta/ecoleta-go/internal/metrics"
	"github.com/ecoleta/ecoleta-go/internal/repository"
	"github.com/ecoleta/ecoleta-go/internal/service"
	"github.com/ecoleta/ecoleta-go/internal/validation"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	m := metrics.New()
	deps := routerDeps{
		metrics:        m,
		rateLimitRPS:   cfg.RateLimitRPS,
		rateLimitBurst: cfg.RateLimitBurst,
	}

	// Initialize DB-backed routes if the DSN is usable.
	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Warn("database connection failed, API routes disabled", "error", err)
	} else {
		defer db.Close()

		key, err := crypto.DeriveSigningKey(cfg.JWTSecret, time.Now())
		if err != nil {
			slog.Error("deriving signing key", "error", err)
			os.Exit(1)
		}

		userRepo := repository.NewUserRepository(db)
		materialRepo := repository.NewMaterialRepository(db)
		pickupRepo := repository.NewPickupRepository(db)

		sessions := service.NewSessionService(userRepo, key, nil)
		authService := service.NewAuthService(userRepo, sessions)
		engine := validation.NewEngine(cfg.Timezone, nil)
		pickupService := service.NewPickupService(engine, materialRepo, pickupRepo)

		deps.sessions = sessions
		deps.auth = handler.NewAuthHandler(authService, sessions, m)
		deps.pickups = handler.NewPickupHandler(pickupService, m)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "timezone", cfg.Timezone.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
