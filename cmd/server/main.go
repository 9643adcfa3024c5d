package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/config"
	"github.com/Andrei050191/La-serviciu/internal/api/handler"
	"github.com/Andrei050191/La-serviciu/internal/api/router"
	"github.com/Andrei050191/La-serviciu/internal/repository"
	"github.com/Andrei050191/La-serviciu/internal/service"
	"github.com/Andrei050191/La-serviciu/pkg/database"
	"github.com/Andrei050191/La-serviciu/pkg/jwt"
	applogger "github.com/Andrei050191/La-serviciu/pkg/logger"
	"github.com/Andrei050191/La-serviciu/pkg/redis"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting up",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("getting underlying sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("running migrations", zap.Error(err))
	}

	// Redis is optional: without it the blacklist, summary cache, rate
	// limiter and event stream degrade, nothing else does.
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running degraded", zap.Error(err))
		rdb = nil
	}

	jwtMgr := jwt.NewManager(&cfg.Auth)

	repo := repository.NewRepository(db)

	var notifier service.Notifier = service.NewNopNotifier()
	if rdb != nil {
		notifier = service.NewRedisNotifier(rdb, logger)
	}
	svc := service.NewServices(repo, cfg, jwtMgr, rdb, notifier, logger)

	// a fresh deployment has nobody to log in as; seed the admin account
	if err := svc.Member.EnsureBootstrapAdmin(context.Background()); err != nil {
		logger.Fatal("seeding bootstrap admin", zap.Error(err))
	}

	h := handler.NewHandler(svc, rdb)
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout: 15 * time.Second,
		// no write timeout: /api/v1/events holds its connection open
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
