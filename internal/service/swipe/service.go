// Package swipe resolves discovery decisions: a swipe-right goes through
// the like/match engine, a swipe-left only touches the session queue.
package swipe

import (
	"net/http"

	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"
	"github.com/flamematch/backend/internal/db"
	svcErr "github.com/flamematch/backend/internal/errors"
	"github.com/flamematch/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// Outcome labels returned to the client.
const (
	OutcomeLiked   = "liked"
	OutcomeMatched = "matched"
)

// Service implements the swipe endpoints.
type Service struct {
	appCtx    *app.AppContext
	userRepo  *repository.UserRepository
	matchRepo *repository.MatchRepository
}

// NewService wires the swipe service from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		userRepo:  repository.NewUserRepository(appCtx.DB),
		matchRepo: repository.NewMatchRepository(appCtx.DB),
	}
}

type swipeRequest struct {
	TargetUserID string `json:"targetUserId" binding:"required"`
}

type swipeResponse struct {
	Outcome string    `json:"outcome"`
	Match   *db.Match `json:"match,omitempty"`
}

// Like resolves a swipe-right decision.
//
// Behavior:
//   - Persists the like and, when the reverse like exists, the match —
//     atomically, via the pair-state transition.
//   - On success removes the target from the caller's discovery queue
//     and, on a match, pushes it into the session match cache.
//   - On a store failure the target STAYS in the queue so the caller
//     can re-issue the same decision.
func (s *Service) Like(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		s.fail(c, nil, err)
		return
	}
	sess := s.appCtx.Sessions.Get(userID)

	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, sess, svcErr.InvalidArgument("targetUserId is required"))
		return
	}
	if req.TargetUserID == userID {
		s.fail(c, sess, svcErr.InvalidArgument("cannot decide on yourself"))
		return
	}

	ctx := c.Request.Context()

	actor, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.fail(c, sess, svcErr.Map(err))
		return
	}

	// Prefer the queued snapshot; fall back to the store for likes that
	// arrive outside a discovery session (e.g. from the likes screen).
	target, ok := sess.Queue().Get(req.TargetUserID)
	if !ok {
		loaded, err := s.userRepo.GetByID(ctx, req.TargetUserID)
		if err != nil {
			s.fail(c, sess, svcErr.Map(err))
			return
		}
		target = *loaded
	}

	out, err := s.matchRepo.DecideLike(ctx, *actor, target)
	if err != nil {
		s.appCtx.Logger.Error("decide failed", "actor", userID, "target", req.TargetUserID, "err", err)
		s.fail(c, sess, svcErr.Map(err))
		return
	}

	// decision resolved: the candidate leaves the queue
	sess.Queue().Remove(req.TargetUserID)

	// keep the recipient's received-like counter warm
	key := s.appCtx.RedisCache.KeyForLikeCount(req.TargetUserID)
	if err := s.appCtx.RedisCache.BumpCounter(ctx, key); err != nil {
		s.appCtx.Logger.Warn("like counter bump failed", "key", key, "err", err)
	}

	if out.Matched {
		sess.AddMatch(*out.Match)
		s.appCtx.Logger.Info("new match", "match_id", out.Match.ID, "user1", out.Match.User1ID, "user2", out.Match.User2ID)
		c.JSON(http.StatusOK, swipeResponse{Outcome: OutcomeMatched, Match: out.Match})
		return
	}
	c.JSON(http.StatusOK, swipeResponse{Outcome: OutcomeLiked})
}

// Pass resolves a swipe-left: a pure queue removal, nothing persisted.
func (s *Service) Pass(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		s.fail(c, nil, err)
		return
	}
	sess := s.appCtx.Sessions.Get(userID)

	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, sess, svcErr.InvalidArgument("targetUserId is required"))
		return
	}

	sess.Queue().Remove(req.TargetUserID)
	c.Status(http.StatusNoContent)
}

// fail records the error in the session slot and writes the HTTP error.
func (s *Service) fail(c *gin.Context, sess sessionErrorSink, err error) {
	if sess != nil {
		sess.SetError(err)
	}
	c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
}

type sessionErrorSink interface{ SetError(error) }
