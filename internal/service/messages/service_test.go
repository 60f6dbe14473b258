package messages_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"
	"github.com/flamematch/backend/internal/cache"
	"github.com/flamematch/backend/internal/config"
	"github.com/flamematch/backend/internal/db"
	"github.com/flamematch/backend/internal/server"
	"github.com/flamematch/backend/internal/service/messages"
)

type env struct {
	appCtx *app.AppContext
	tokens *auth.Tokens
	router *gin.Engine
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(dbase, cache.NewRedisCache(cfg), log)
	tokens := auth.NewTokens(cfg)

	router := server.NewRouter(log, auth.Middleware(tokens), nil, []server.Registrar{
		messages.NewRegistrar(appCtx),
	})
	return &env{appCtx: appCtx, tokens: tokens, router: router}
}

// seedMatch creates the two participants and their confirmed match.
func (e *env) seedMatch(t *testing.T) db.Match {
	t.Helper()
	for _, u := range []db.User{
		{ID: "u1", Email: "u1@test.com", PasswordHash: "x", Name: "Ada"},
		{ID: "u2", Email: "u2@test.com", PasswordHash: "x", Name: "Bea"},
	} {
		require.NoError(t, e.appCtx.DB.Create(&u).Error)
	}
	m := db.Match{ID: "m1", User1ID: "u1", User2ID: "u2"}
	require.NoError(t, e.appCtx.DB.Create(&m).Error)
	return m
}

func (e *env) do(t *testing.T, userID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	token, err := e.tokens.Issue(userID)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// TestSendUpdatesMatchSummary: after send("hi"), the match's lastMessage
// mirrors the message text and its exact timestamp.
func TestSendUpdatesMatchSummary(t *testing.T) {
	e := setupEnv(t)
	m := e.seedMatch(t)

	rec := e.do(t, "u1", http.MethodPost, "/api/v1/matches/m1/messages", gin.H{"text": "hi"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg db.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "u1", msg.SenderID)
	assert.Equal(t, "hi", msg.Text)
	assert.False(t, msg.IsRead)

	var got db.Match
	require.NoError(t, e.appCtx.DB.First(&got, "id = ?", m.ID).Error)
	assert.Equal(t, "hi", got.LastMessage)
	assert.True(t, got.LastMessageTime.Equal(msg.Timestamp))
}

func TestSendRejectsBlankText(t *testing.T) {
	e := setupEnv(t)
	e.seedMatch(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		rec := e.do(t, "u1", http.MethodPost, "/api/v1/matches/m1/messages", gin.H{"text": text})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	var count int64
	require.NoError(t, e.appCtx.DB.Model(&db.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

// TestSubscriberObservesOrderedSnapshots drives sends through the HTTP
// handler while listening on the hub: every delivered snapshot is the
// full thread, non-decreasing in timestamp.
func TestSubscriberObservesOrderedSnapshots(t *testing.T) {
	e := setupEnv(t)
	m := e.seedMatch(t)

	feed, cancel := e.appCtx.Hub.Subscribe(m.ID)
	defer cancel()

	for i, text := range []string{"one", "two", "three"} {
		sender := "u1"
		if i%2 == 1 {
			sender = "u2"
		}
		rec := e.do(t, sender, http.MethodPost, "/api/v1/matches/m1/messages", gin.H{"text": text})
		require.Equal(t, http.StatusCreated, rec.Code)
		time.Sleep(2 * time.Millisecond) // distinct timestamps at ms precision
	}

	var last []db.Message
	for i := 0; i < 3; i++ {
		select {
		case snap := <-feed:
			require.Len(t, snap, i+1, "each delivery carries the full thread")
			for j := 1; j < len(snap); j++ {
				assert.False(t, snap[j].Timestamp.Before(snap[j-1].Timestamp))
			}
			last = snap
		case <-time.After(time.Second):
			t.Fatal("snapshot not delivered")
		}
	}
	assert.Equal(t, "three", last[2].Text)
}

func TestThreadHiddenFromNonParticipants(t *testing.T) {
	e := setupEnv(t)
	e.seedMatch(t)
	intruder := db.User{ID: "u3", Email: "u3@test.com", PasswordHash: "x", Name: "Eve"}
	require.NoError(t, e.appCtx.DB.Create(&intruder).Error)

	rec := e.do(t, "u3", http.MethodGet, "/api/v1/matches/m1/messages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, "u3", http.MethodPost, "/api/v1/matches/m1/messages", gin.H{"text": "let me in"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, "u1", http.MethodGet, "/api/v1/matches/missing/messages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkReadFlipsOtherSideOnly(t *testing.T) {
	e := setupEnv(t)
	e.seedMatch(t)

	rec := e.do(t, "u1", http.MethodPost, "/api/v1/matches/m1/messages", gin.H{"text": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = e.do(t, "u2", http.MethodPost, "/api/v1/matches/m1/messages", gin.H{"text": "hey"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, "u1", http.MethodPost, "/api/v1/matches/m1/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var unreadBySender int64
	require.NoError(t, e.appCtx.DB.Model(&db.Message{}).
		Where("sender_id = ? AND is_read = ?", "u2", false).
		Count(&unreadBySender).Error)
	assert.Zero(t, unreadBySender)

	// u1's own message still unread from u2's perspective
	require.NoError(t, e.appCtx.DB.Model(&db.Message{}).
		Where("sender_id = ? AND is_read = ?", "u1", false).
		Count(&unreadBySender).Error)
	assert.Equal(t, int64(1), unreadBySender)
}

// TestThreadHistoryOrdered reads the thread back over HTTP after a
// conversation and checks the ascending order end to end.
func TestThreadHistoryOrdered(t *testing.T) {
	e := setupEnv(t)
	e.seedMatch(t)

	for _, text := range []string{"a", "b", "c"} {
		rec := e.do(t, "u1", http.MethodPost, "/api/v1/matches/m1/messages", gin.H{"text": text})
		require.Equal(t, http.StatusCreated, rec.Code)
		time.Sleep(2 * time.Millisecond) // distinct timestamps at ms precision
	}

	rec := e.do(t, "u2", http.MethodGet, "/api/v1/matches/m1/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []db.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 3)
	assert.Equal(t, "a", resp.Messages[0].Text)
	assert.Equal(t, "c", resp.Messages[2].Text)
}
