package messages

import (
	"github.com/flamematch/backend/internal/app"

	"github.com/gin-gonic/gin"
)

// Registrar ties the messages service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the messages service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the conversation routes to the protected group.
func (r *Registrar) Register(rg *gin.RouterGroup) {
	service := NewService(r.appCtx)
	rg.GET("/matches/:id/messages", service.List)
	rg.POST("/matches/:id/messages", service.Send)
	rg.POST("/matches/:id/read", service.MarkRead)
	rg.GET("/matches/:id/messages/ws", service.Subscribe)
}
