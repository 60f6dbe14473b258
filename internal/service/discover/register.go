package discover

import (
	"github.com/flamematch/backend/internal/app"

	"github.com/gin-gonic/gin"
)

// Registrar ties the discovery service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the discovery service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the discovery routes to the protected group.
func (r *Registrar) Register(rg *gin.RouterGroup) {
	service := NewService(r.appCtx)
	rg.GET("/discovery", service.Load)
	rg.GET("/discovery/next", service.Next)
}
