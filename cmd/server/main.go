// Package main is the entry point for the intake API server
//
//	@title			JRM Intake API
//	@version		1.0
//	@description	Intake (jrm) and metrics records with approved-date propagation.
//
//	@host		localhost:3000
//	@BasePath	/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"jrm-intake-api/internal/config"
	"jrm-intake-api/internal/db"
	"jrm-intake-api/internal/esx"
	"jrm-intake-api/internal/events"
	"jrm-intake-api/internal/httpx"
	"jrm-intake-api/internal/httpx/kit"
	"jrm-intake-api/internal/httpx/mw"
	"jrm-intake-api/internal/intake"
	"jrm-intake-api/internal/logx"
	"jrm-intake-api/internal/mqx"
	"jrm-intake-api/internal/redisx"
	"jrm-intake-api/internal/server"

	_ "jrm-intake-api/docs" // swagger docs
)

func main() {
	_ = godotenv.Load()

	cfg, store, apClose, err := config.Load()
	if err != nil {
		panic(err)
	}
	if apClose != nil {
		defer apClose()
	}

	logx.Init(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logx.Sync() }()
	mainLogger := logx.GetScope("main")

	mainLogger.Info("config loaded",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.Server.Addr),
		zap.String("db.driver", cfg.DB.Driver),
		zap.String("log.level", cfg.Log.Level),
		zap.Bool("auth", cfg.AuthEnabled()),
	)

	drv, closeDB, err := db.Open(cfg)
	if err != nil {
		mainLogger.Fatal("open db failed", zap.Error(err))
	}
	defer closeDB()

	if cfg.DB.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := db.Migrate(ctx, drv)
		cancel()
		if err != nil {
			mainLogger.Fatal("migrate failed", zap.Error(err))
		}
	}
	intakes := intake.NewStore(drv)

	// Optional deps: Redis, MQ, ES
	rdb, redisClose, err := redisx.Open(cfg)
	if err != nil {
		mainLogger.Sugar().Warnw("redis init failed", "err", err)
	} else {
		defer redisClose()
	}

	var publisher mqx.Publisher
	if pub, err := mqx.Open(cfg); err != nil {
		mainLogger.Sugar().Warnw("mq init failed", "err", err)
	} else if pub != nil {
		publisher = pub
		defer func() { _ = pub.Close() }()
	}

	var indexer events.Indexer
	esClient, esClose, err := esx.Open(cfg)
	if err != nil {
		mainLogger.Sugar().Warnw("es init failed", "err", err)
	} else if esClient != nil {
		defer esClose()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := esx.EnsureIndex(ctx, esClient, cfg.ES.Index); err != nil {
			mainLogger.Sugar().Warnw("es index setup failed", "index", cfg.ES.Index, "err", err)
		}
		cancel()
		indexer = esx.NewIndexer(esClient, cfg.ES.Index, intakes)
	}

	notifier := events.NewNotifier(publisher, indexer)
	defer notifier.Close()

	limiter := mw.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.WindowSec)

	app := fiber.New(fiber.Config{
		ErrorHandler: kit.ErrorHandler(),
		UnescapePath: true,
		AppName:      "jrm-intake-api",
	})
	httpx.RegisterCommonMiddlewares(app)
	httpx.Register(app, httpx.Deps{
		Store:    intakes,
		Notifier: notifier,
		ES:       esClient,
		Redis:    rdb,
		Limiter:  limiter,
		Config:   store.Get,
	})

	// Validators: reject invalid runtime config
	store.AddValidator(func(newCfg *config.Config, changed map[string]bool) error {
		if changed["db.max_open"] || changed["db.max_idle"] {
			if newCfg.DB.MaxIdleConns > newCfg.DB.MaxOpenConns {
				return fmt.Errorf("DB_MAX_IDLE cannot exceed DB_MAX_OPEN")
			}
		}
		if changed["ratelimit.max"] && newCfg.RateLimit.Max < 0 {
			return fmt.Errorf("RATE_LIMIT_MAX cannot be negative")
		}
		return nil
	})

	store.Watch(func(newCfg *config.Config, changed map[string]bool) {
		if changed["db.max_open"] || changed["db.max_idle"] {
			db.UpdatePool(newCfg.DB.MaxOpenConns, newCfg.DB.MaxIdleConns)
			mainLogger.Info("db pool updated",
				zap.Int("max_open", newCfg.DB.MaxOpenConns),
				zap.Int("max_idle", newCfg.DB.MaxIdleConns),
			)
		}
		if changed["ratelimit.max"] || changed["ratelimit.window_sec"] {
			limiter.Update(newCfg.RateLimit.Max, newCfg.RateLimit.WindowSec)
			mainLogger.Info("rate limit updated",
				zap.Int("max", newCfg.RateLimit.Max),
				zap.Int("window_sec", newCfg.RateLimit.WindowSec),
			)
		}
		if changed["db.dsn"] || changed["redis.addr"] || changed["mq.url"] || changed["es.addrs"] {
			mainLogger.Warn("connection settings changed; restart required to reconnect")
		}
		if changed["server.addr"] || changed["server.static_dir"] {
			mainLogger.Warn("server settings changed; restart required to take effect",
				zap.String("addr", newCfg.Server.Addr),
			)
		}
		if changed["log.level"] || changed["log.format"] {
			logx.Init(newCfg.Log.Level, newCfg.Log.Format)
			mainLogger.Info("logger reconfigured",
				zap.String("level", newCfg.Log.Level),
				zap.String("format", newCfg.Log.Format),
			)
		}
	})

	go func() {
		ln, err := server.GetListener(cfg.Server.Addr)
		if err != nil {
			mainLogger.Sugar().Errorf("listener error: %v", err)
			os.Exit(1)
		}
		if err := app.Listener(ln); err != nil {
			mainLogger.Sugar().Infof("fiber exit: %v", err)
		}
	}()
	mainLogger.Sugar().Infof("server started on %s", cfg.Server.Addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	mainLogger.Info("shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		mainLogger.Warn("shutdown", zap.Error(err))
	}
}
