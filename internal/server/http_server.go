package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/flamematch/backend/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the gin engine: recovery, request logging, CORS,
// then all routes under /api/v1 split into a public group and a
// token-protected group.
func NewRouter(
	log *slog.Logger,
	authMW gin.HandlerFunc,
	public []Registrar,
	protected []Registrar,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	api := engine.Group("/api/v1")
	for _, r := range public {
		r.Register(api)
	}

	priv := api.Group("", authMW)
	for _, r := range protected {
		r.Register(priv)
	}

	return engine
}

// StartHTTPServer boots the HTTP server and blocks until it exits.
func StartHTTPServer(
	cfg *config.Config,
	log *slog.Logger,
	authMW gin.HandlerFunc,
	public []Registrar,
	protected []Registrar,
) error {
	if cfg.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := NewRouter(log, authMW, public, protected)

	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	return engine.Run(addr)
}

// requestLogger logs every request through the shared slog logger.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
