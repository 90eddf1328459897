package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/nineball/internal/api"
	"github.com/playmatatu/nineball/internal/config"
	"github.com/playmatatu/nineball/internal/database"
	"github.com/playmatatu/nineball/internal/game"
	"github.com/playmatatu/nineball/internal/middleware"
	"github.com/playmatatu/nineball/internal/migrations"
	"github.com/playmatatu/nineball/internal/redis"
	"github.com/playmatatu/nineball/internal/ws"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile := game.DefaultProfile()
	if cfg.TableProfile != "" {
		p, err := game.LoadProfile(cfg.TableProfile)
		if err != nil {
			return err
		}
		profile = p
		slog.Info("table profile loaded", "path", cfg.TableProfile)
	}

	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			slog.Info("running migrations", "dir", migrations.DefaultDir)
			if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
				return err
			}
		}
	} else {
		slog.Warn("DATABASE_URL not set; matches will not be stored and admin routes are disabled")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
	} else {
		slog.Warn("REDIS_URL not set; snapshots are not cached and idle tracking is local")
	}

	mm := game.NewMatchManager(db, rdb, cfg, profile)
	hub := ws.NewHub()

	var validateAdmin middleware.AdminValidator
	if db != nil {
		validateAdmin = middleware.DBAdminValidator(db)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, mm, hub, cfg, validateAdmin)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting nineball server", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return game.RunFrames(gctx, mm, cfg.FrameRate, hub) })
	g.Go(func() error {
		return game.RunIdleWorker(gctx, mm, time.Duration(cfg.IdleWorkerPollInterval)*time.Second)
	})
	g.Go(func() error { return ws.RunEventSubscriber(gctx, rdb, hub) })

	return g.Wait()
}
