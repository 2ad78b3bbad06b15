package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-management-api/internal/config"
	"github.com/yukikurage/team-management-api/internal/handlers"
	"github.com/yukikurage/team-management-api/internal/identity"
	"github.com/yukikurage/team-management-api/internal/logger"
	"github.com/yukikurage/team-management-api/internal/middleware"
	"github.com/yukikurage/team-management-api/internal/repository"
	"github.com/yukikurage/team-management-api/internal/services"
	"github.com/yukikurage/team-management-api/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	if err := run(cfg, appLog); err != nil {
		appLog.Error("server stopped", "error", err)
		appLog.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLog *logger.Logger) error {
	gin.SetMode(cfg.GinMode)

	docs, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		return fmt.Errorf("create session store: %w", err)
	}

	repos := repository.New(docs)
	identities := identity.NewStoreProvider(docs)
	svc := services.New(repos, identities, appLog, services.Options{
		MaxOrganizers: cfg.MaxTournamentOrganizers,
		Concurrency:   cfg.CascadeConcurrency,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	go limiter.Run(ctx.Done())

	router := handlers.NewRouter(handlers.RouterDeps{
		Services:     svc,
		Repositories: repos,
		Sessions:     sessionStore,
		Log:          appLog.With("component", "http"),
		CORSOrigins:  cfg.CORSOrigins,
		AuthLimiter:  limiter,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLog.Info("server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "sessions", cfg.SessionStore)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		appLog.Info("server stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newSessionStore builds the cookie or redis session backend named by SESSION_STORE.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var st sessions.Store
	switch cfg.SessionStore {
	case "redis":
		rs, err := redisStore.NewStore(10, "tcp", cfg.RedisAddr, "", "", []byte(cfg.SessionSecret))
		if err != nil {
			return nil, err
		}
		st = rs
	default:
		st = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	st.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return st, nil
}
