package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ulchatur/app/internal/app/migrate"
	httpx "github.com/ulchatur/app/internal/http"
	"github.com/ulchatur/app/internal/repository/mysql"
	"github.com/ulchatur/app/internal/service/user"
	"github.com/ulchatur/app/internal/ws"
	"github.com/ulchatur/app/pkg/config"
	"github.com/ulchatur/app/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadAPIConfig()
	log := logger.New("api", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := mysql.Open(cfg)
	if err != nil {
		log.Error("failed to configure database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Schema setup is best effort: an unreachable database at boot degrades
	// to per-request failures instead of keeping the process down.
	if runner, err := migrate.New(mysql.DSN(cfg), cfg.MigrationsDir, log); err != nil {
		log.Error("failed to configure migrations", "error", err)
	} else if err := runner.Ensure(ctx); err != nil {
		log.Error("schema initialization failed, serving anyway", "error", err)
	}

	hub := ws.NewHub(cfg.WSEventBuffer)
	userSvc := user.New(repo, hub, log)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, userSvc, hub, limiter)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
