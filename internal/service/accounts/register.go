package accounts

import (
	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// Registrar attaches the public account routes (no token required).
type Registrar struct {
	appCtx *app.AppContext
	tokens *auth.Tokens
}

// NewRegistrar creates a new Registrar for the public account routes.
func NewRegistrar(appCtx *app.AppContext, tokens *auth.Tokens) *Registrar {
	return &Registrar{appCtx: appCtx, tokens: tokens}
}

// Register attaches registration and login.
func (r *Registrar) Register(rg *gin.RouterGroup) {
	service := NewService(r.appCtx, r.tokens)
	rg.POST("/auth/register", service.Register)
	rg.POST("/auth/login", service.Login)
}

// SessionRegistrar attaches the account routes that need a session.
type SessionRegistrar struct {
	appCtx *app.AppContext
	tokens *auth.Tokens
}

// NewSessionRegistrar creates a Registrar for the protected account routes.
func NewSessionRegistrar(appCtx *app.AppContext, tokens *auth.Tokens) *SessionRegistrar {
	return &SessionRegistrar{appCtx: appCtx, tokens: tokens}
}

// Register attaches logout and the session error slot.
func (r *SessionRegistrar) Register(rg *gin.RouterGroup) {
	service := NewService(r.appCtx, r.tokens)
	rg.POST("/auth/logout", service.Logout)
	rg.GET("/session/error", service.LastError)
}
