package matches

import (
	"github.com/flamematch/backend/internal/app"

	"github.com/gin-gonic/gin"
)

// Registrar ties the matches service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the matches service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the match registry routes to the protected group.
func (r *Registrar) Register(rg *gin.RouterGroup) {
	service := NewService(r.appCtx)
	rg.GET("/matches", service.List)
	rg.GET("/matches/:id", service.Get)
}
