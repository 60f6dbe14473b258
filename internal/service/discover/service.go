// Package discover serves the discovery feed: loading the session's
// candidate queue from the profile store and exposing its state.
package discover

import (
	"net/http"

	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"
	svcErr "github.com/flamematch/backend/internal/errors"
	"github.com/flamematch/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// Service implements the discovery endpoints.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewService wires the discovery service from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Load (re)fills the caller's discovery queue and returns its contents.
// A failed load surfaces the error and leaves the queue empty; the
// client retries by calling this endpoint again.
func (s *Service) Load(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	sess := s.appCtx.Sessions.Get(userID)

	if err := sess.Queue().Load(c.Request.Context(), s.userRepo, userID); err != nil {
		mapped := svcErr.Map(err)
		sess.SetError(mapped)
		s.appCtx.Logger.Error("discovery load failed", "user", userID, "err", err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": sess.Queue().Items()})
}

// Next returns the head of the queue without consuming it, or 204 when
// the queue is exhausted. Consumption happens through a swipe decision.
func (s *Service) Next(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	sess := s.appCtx.Sessions.Get(userID)

	head, ok := sess.Queue().Peek()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, head)
}
