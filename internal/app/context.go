package app

import (
	"log/slog"

	"github.com/flamematch/backend/internal/cache"
	"github.com/flamematch/backend/internal/chat"
	"github.com/flamematch/backend/internal/session"
	"gorm.io/gorm"
)

// AppContext holds shared dependencies (DB, Redis, Logger, chat hub,
// session manager).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Hub        *chat.Hub
	Sessions   *session.Manager
}

// New creates a new AppContext.
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	hub := chat.NewHub()
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Hub:        hub,
		Sessions:   session.NewManager(hub),
	}
}
