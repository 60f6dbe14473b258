package messages

import (
	"net/http"
	"time"

	svcErr "github.com/flamematch/backend/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browsers enforce same-origin poorly for WS; auth is the bearer
	// token, so cross-origin upgrades are allowed like the REST API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Subscribe upgrades the request to a WebSocket and streams the match's
// thread: one JSON array of messages per delivery, full list every
// time, ordered by timestamp.
//
// Subscription lifecycle follows the session's conversation channel:
// opening a feed for any match replaces the session's previous one, so
// a caller never has two live listeners. The feed is released when the
// client disconnects, the request context ends, or a newer subscription
// replaces this one.
func (s *Service) Subscribe(c *gin.Context) {
	match, userID, err := s.requireMatch(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	sess := s.appCtx.Sessions.Get(userID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.appCtx.Logger.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	feed := sess.Channel().Open(match.ID)
	defer sess.Channel().Release(feed)

	// initial snapshot so the client renders without waiting for a send
	initial, err := s.msgRepo.ListByMatch(c.Request.Context(), match.ID)
	if err != nil {
		s.appCtx.Logger.Error("initial snapshot load failed", "match_id", match.ID, "err", err)
		sess.SetError(svcErr.Map(err))
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(initial); err != nil {
		return
	}

	// reader goroutine: we never expect client frames, but reading is
	// how gorilla surfaces close frames and dead peers
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-feed:
			if !ok {
				// replaced by a newer subscription or session teardown
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
