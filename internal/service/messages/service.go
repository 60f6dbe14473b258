// Package messages serves one match's conversation: the ordered thread,
// the send operation with its match-summary update, the read receipt
// and the live WebSocket feed of full-thread snapshots.
package messages

import (
	"net/http"
	"strings"

	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"
	"github.com/flamematch/backend/internal/db"
	svcErr "github.com/flamematch/backend/internal/errors"
	"github.com/flamematch/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// Service implements the conversation endpoints.
type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
	msgRepo   *repository.MessageRepository
}

// NewService wires the messages service from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		msgRepo:   repository.NewMessageRepository(appCtx.DB),
	}
}

// requireMatch loads the match and verifies the caller participates.
// A match the caller is not part of is reported as not found.
func (s *Service) requireMatch(c *gin.Context) (*db.Match, string, error) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return nil, "", err
	}
	match, err := s.matchRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, "", svcErr.Map(err)
	}
	if match.User1ID != userID && match.User2ID != userID {
		return nil, "", svcErr.NotFound("match not found")
	}
	return match, userID, nil
}

// List returns the full ordered thread for a match.
func (s *Service) List(c *gin.Context) {
	match, _, err := s.requireMatch(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	msgs, err := s.msgRepo.ListByMatch(c.Request.Context(), match.ID)
	if err != nil {
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type sendRequest struct {
	Text string `json:"text"`
}

// Send appends a message to the thread.
//
// Behavior:
//   - Blank text is rejected at the boundary.
//   - The message is persisted first; the parent match's
//     lastMessage/lastMessageTime are then updated to the same
//     text/timestamp. The two writes are not transactional: a summary
//     update that loses a race (or fails) is repaired by the next send,
//     so a failure there is logged and recorded in the session error
//     slot rather than failing the send.
//   - Every subscriber of the match receives a fresh full snapshot.
func (s *Service) Send(c *gin.Context) {
	match, userID, err := s.requireMatch(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	sess := s.appCtx.Sessions.Get(userID)

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		err := svcErr.InvalidArgument("message text must not be blank")
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	msg, err := s.msgRepo.Insert(ctx, match.ID, userID, text)
	if err != nil {
		mapped := svcErr.Map(err)
		sess.SetError(mapped)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}

	if err := s.matchRepo.UpdateLastMessage(ctx, match.ID, msg); err != nil {
		mapped := svcErr.Map(err)
		sess.SetError(mapped)
		s.appCtx.Logger.Warn("match summary update failed", "match_id", match.ID, "err", err)
	}

	// unread counter for the other participant
	other := match.User1ID
	if other == userID {
		other = match.User2ID
	}
	key := s.appCtx.RedisCache.KeyForUnreadCount(match.ID, other)
	if err := s.appCtx.RedisCache.BumpCounter(ctx, key); err != nil {
		s.appCtx.Logger.Warn("unread counter bump failed", "key", key, "err", err)
	}

	s.broadcast(c, match.ID)
	c.JSON(http.StatusCreated, msg)
}

// MarkRead flips the read flag on the other side's messages and clears
// the caller's unread counter for the match.
func (s *Service) MarkRead(c *gin.Context) {
	match, userID, err := s.requireMatch(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	changed, err := s.msgRepo.MarkRead(ctx, match.ID, userID)
	if err != nil {
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}

	key := s.appCtx.RedisCache.KeyForUnreadCount(match.ID, userID)
	if err := s.appCtx.RedisCache.ResetCounter(ctx, key); err != nil {
		s.appCtx.Logger.Warn("unread counter reset failed", "key", key, "err", err)
	}

	if changed > 0 {
		s.broadcast(c, match.ID)
	}
	c.JSON(http.StatusOK, gin.H{"updated": changed})
}

// broadcast reloads the ordered thread and fans it out to subscribers.
func (s *Service) broadcast(c *gin.Context, matchID string) {
	snapshot, err := s.msgRepo.ListByMatch(c.Request.Context(), matchID)
	if err != nil {
		s.appCtx.Logger.Warn("snapshot reload failed", "match_id", matchID, "err", err)
		return
	}
	s.appCtx.Hub.Broadcast(matchID, snapshot)
}
