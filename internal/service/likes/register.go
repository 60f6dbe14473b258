package likes

import (
	"github.com/flamematch/backend/internal/app"

	"github.com/gin-gonic/gin"
)

// Registrar ties the likes service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the likes service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the likes routes to the protected group.
func (r *Registrar) Register(rg *gin.RouterGroup) {
	service := NewService(r.appCtx)
	rg.GET("/likes/received", service.ListReceived)
	rg.GET("/likes/received/new", service.ListReceivedNew)
	rg.GET("/likes/received/count", service.CountReceived)
}
