// Package matches serves the match registry: the caller's confirmed
// matches sorted by recency, with a session-cached fallback.
package matches

import (
	"net/http"

	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"
	svcErr "github.com/flamematch/backend/internal/errors"
	"github.com/flamematch/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// Service implements the match registry endpoints.
type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
}

// NewService wires the matches service from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
	}
}

// List returns all of the caller's matches, newest first, and refreshes
// the session cache. On a store failure the previous cached list is
// served (read-through) together with the error signal, so the screen
// keeps its state.
func (s *Service) List(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	sess := s.appCtx.Sessions.Get(userID)

	found, err := s.matchRepo.FindByEitherSide(c.Request.Context(), userID)
	if err != nil {
		mapped := svcErr.Map(err)
		sess.SetError(mapped)
		s.appCtx.Logger.Error("match registry load failed", "user", userID, "err", err)
		c.JSON(http.StatusOK, gin.H{
			"matches": sess.Matches(),
			"stale":   true,
			"error":   mapped.Error(),
		})
		return
	}

	sess.SetMatches(found)
	c.JSON(http.StatusOK, gin.H{"matches": found})
}

// Get returns one match the caller participates in.
func (s *Service) Get(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	match, err := s.matchRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}
	if match.User1ID != userID && match.User2ID != userID {
		err := svcErr.NotFound("match not found")
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, match)
}
