package profile

import (
	"github.com/flamematch/backend/internal/app"

	"github.com/gin-gonic/gin"
)

// Registrar ties the profile service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the profile service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the profile routes to the protected group.
func (r *Registrar) Register(rg *gin.RouterGroup) {
	service := NewService(r.appCtx)
	rg.GET("/me", service.Me)
	rg.PUT("/me", service.UpdateMe)
	rg.GET("/users/:id", service.Get)
}
