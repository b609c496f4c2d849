// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/equilibrium/service/internal/cache"
	"github.com/jason-s-yu/equilibrium/service/internal/config"
	"github.com/jason-s-yu/equilibrium/service/internal/database"
	"github.com/jason-s-yu/equilibrium/service/internal/handlers"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("loading config")
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logrus.WithError(err).Error("server stopped")
		os.Exit(1)
	}
	logrus.Info("server exited")
}

func run(ctx context.Context, cfg *config.Config) error {
	var store cache.Store
	if err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logrus.WithError(err).Warn("redis unavailable, rooms are kept in process memory")
		store = cache.NewMemoryStore()
	} else {
		defer cache.CloseRedis()
		store = cache.NewRedisStore(cache.Rdb)
	}

	if cfg.DatabaseURL != "" {
		if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
		defer database.CloseDB()
	} else {
		logrus.Info("DATABASE_URL not set, game results will not be persisted")
	}

	hub := handlers.NewHub(store, cfg.JWTSecret, cfg.Rules, cfg.AllowedOrigins)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           hub.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{"addr": cfg.ListenAddr, "instance": hub.Instance}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cache.SubscribeRoomEvents(gctx, hub.Instance, hub.Relay)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
