package main

import (
	"context"

	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"
	"github.com/flamematch/backend/internal/cache"
	"github.com/flamematch/backend/internal/config"
	"github.com/flamematch/backend/internal/db"
	"github.com/flamematch/backend/internal/logger"
	"github.com/flamematch/backend/internal/server"
	"github.com/flamematch/backend/internal/service/accounts"
	"github.com/flamematch/backend/internal/service/discover"
	"github.com/flamematch/backend/internal/service/likes"
	"github.com/flamematch/backend/internal/service/matches"
	"github.com/flamematch/backend/internal/service/messages"
	"github.com/flamematch/backend/internal/service/profile"
	"github.com/flamematch/backend/internal/service/swipe"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)
	tokens := auth.NewTokens(cfg)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	public := []server.Registrar{
		accounts.NewRegistrar(appCtx, tokens),
	}
	protected := []server.Registrar{
		accounts.NewSessionRegistrar(appCtx, tokens),
		profile.NewRegistrar(appCtx),
		discover.NewRegistrar(appCtx),
		swipe.NewRegistrar(appCtx),
		likes.NewRegistrar(appCtx),
		matches.NewRegistrar(appCtx),
		messages.NewRegistrar(appCtx),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, log, auth.Middleware(tokens), public, protected); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
