package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ecoroot/internal/api"
	"ecoroot/internal/catalog"
	"ecoroot/internal/repository"
	"ecoroot/internal/service"
	"ecoroot/internal/verification"
	"ecoroot/pkg/auth"
	"ecoroot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	err = logger.Initialize(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	var repo service.UserRepository
	if cfg.Database.Enabled {
		r, err := repository.New(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize repository: %w", err)
		}
		defer r.Close()
		repo = r
	} else {
		zapLogger.Warn("database disabled, accounts are kept in memory")
		repo = repository.NewMemoryRepository()
	}

	var mirror service.BalanceMirror = repository.NoopMirror{}
	if cfg.Redis.Enabled {
		m, err := repository.NewRedisMirror(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize legacy balance mirror: %w", err)
		}
		defer m.Close()
		mirror = m
	}

	sched, err := verification.NewScheduler(zapLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			zapLogger.Error("failed to stop scheduler", zap.Error(err))
		}
	}()

	backend := newBackend(cfg.Verification, sched, zapLogger)
	store := service.NewProgressStore(nil)

	userService := service.NewUserService(repo, mirror, nil, zapLogger)
	ledgerService := service.NewLedgerService(userService, repo, mirror, cat, nil, zapLogger)
	progressService := service.NewProgressService(cat, store, backend, nil, zapLogger)
	verificationService := service.NewVerificationService(progressService, ledgerService, backend, sched, cfg.Verification.PollInterval, zapLogger)
	svc := service.NewService(userService, progressService, verificationService, ledgerService)

	err = sched.Every("session sweep", cfg.Session.SweepInterval, func() {
		if n := store.Sweep(cfg.Session.IdleTTL); n > 0 {
			zapLogger.Info("idle sessions dropped", zap.Int("count", n))
		}
	}, "session-sweep")
	if err != nil {
		return err
	}

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.RegisterRoutes(a, svc, cfg.Verification.PollInterval, auth.NewSessionAuth(cfg.DefaultRole))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func newBackend(cfg VerificationConfig, sched *verification.Scheduler, log *zap.Logger) verification.Backend {
	if cfg.Variant == "fixed" {
		log.Info("using fixed-delay verification")
		return verification.NewFixedDelay(sched, cfg.UnderProcessAfter, cfg.ApproveAfter, log)
	}

	return verification.NewSimulator(sched,
		verification.WithRoller(verification.NewRoller(cfg.Seed)),
		verification.WithDelay(cfg.MinDelay, cfg.MaxDelay),
		verification.WithLogger(log))
}
