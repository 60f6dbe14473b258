package swipe_test

import (
	"bytes"
	"context"
	"database/sql"
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
	"github.com/flamematch/backend/internal/repository"
	"github.com/flamematch/backend/internal/server"
	"github.com/flamematch/backend/internal/service/discover"
	"github.com/flamematch/backend/internal/service/swipe"
)

type env struct {
	appCtx *app.AppContext
	tokens *auth.Tokens
	router *gin.Engine
	sqlDB  *sql.DB
}

// setupEnv spins up an in-memory SQLite DB, a miniredis, and a router
// with the swipe and discovery services mounted behind auth.
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
		swipe.NewRegistrar(appCtx),
		discover.NewRegistrar(appCtx),
	})

	return &env{appCtx: appCtx, tokens: tokens, router: router, sqlDB: sqlDB}
}

func (e *env) seedUser(t *testing.T, id, name string) db.User {
	t.Helper()
	u := db.User{
		ID:           id,
		Email:        id + "@test.com",
		PasswordHash: "x",
		Name:         name,
		Photos:       []string{"https://pics/" + id + ".jpg"},
	}
	require.NoError(t, e.appCtx.DB.Create(&u).Error)
	return u
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
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type swipeResult struct {
	Outcome string    `json:"outcome"`
	Match   *db.Match `json:"match"`
}

// TestMutualLikeScenario runs the canonical flow: B likes A first and
// gets "liked"; A likes B back and gets the match, attributed to A as
// the completing side.
func TestMutualLikeScenario(t *testing.T) {
	e := setupEnv(t)
	e.seedUser(t, "u1", "Ada")
	e.seedUser(t, "u2", "Bea")

	rec := e.do(t, "u2", http.MethodPost, "/api/v1/swipes", gin.H{"targetUserId": "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var first swipeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, swipe.OutcomeLiked, first.Outcome)
	assert.Nil(t, first.Match)

	rec = e.do(t, "u1", http.MethodPost, "/api/v1/swipes", gin.H{"targetUserId": "u2"})
	require.Equal(t, http.StatusOK, rec.Code)
	var second swipeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, swipe.OutcomeMatched, second.Outcome)
	require.NotNil(t, second.Match)
	assert.Equal(t, "u1", second.Match.User1ID)
	assert.Equal(t, "u2", second.Match.User2ID)

	// the new match is in A's session cache
	sess := e.appCtx.Sessions.Get("u1")
	require.Len(t, sess.Matches(), 1)
	assert.Equal(t, second.Match.ID, sess.Matches()[0].ID)

	var count int64
	require.NoError(t, e.appCtx.DB.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestPassWritesNothing loads a full queue and passes on everyone: the
// queue drains and the store stays untouched.
func TestPassWritesNothing(t *testing.T) {
	e := setupEnv(t)
	e.seedUser(t, "u1", "Ada")
	for i := 0; i < 20; i++ {
		e.seedUser(t, fmt.Sprintf("c%02d", i), "Candidate")
	}

	rec := e.do(t, "u1", http.MethodGet, "/api/v1/discovery", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sess := e.appCtx.Sessions.Get("u1")
	require.Equal(t, 20, sess.Queue().Len())

	for _, u := range append([]db.User(nil), sess.Queue().Items()...) {
		rec := e.do(t, "u1", http.MethodPost, "/api/v1/swipes/pass", gin.H{"targetUserId": u.ID})
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, 0, sess.Queue().Len())

	var likeCount, pairCount, matchCount int64
	require.NoError(t, e.appCtx.DB.Model(&db.Like{}).Count(&likeCount).Error)
	require.NoError(t, e.appCtx.DB.Model(&db.PairState{}).Count(&pairCount).Error)
	require.NoError(t, e.appCtx.DB.Model(&db.Match{}).Count(&matchCount).Error)
	assert.Zero(t, likeCount)
	assert.Zero(t, pairCount)
	assert.Zero(t, matchCount)
}

// TestLikeRemovesCandidateFromQueue covers queue exclusion: once decided,
// the target cannot be observed again in this queue instance.
func TestLikeRemovesCandidateFromQueue(t *testing.T) {
	e := setupEnv(t)
	e.seedUser(t, "u1", "Ada")
	e.seedUser(t, "u2", "Bea")
	e.seedUser(t, "u3", "Cyn")

	rec := e.do(t, "u1", http.MethodGet, "/api/v1/discovery", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sess := e.appCtx.Sessions.Get("u1")
	require.Equal(t, 2, sess.Queue().Len())

	rec = e.do(t, "u1", http.MethodPost, "/api/v1/swipes", gin.H{"targetUserId": "u2"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, sess.Queue().Len())
	_, pending := sess.Queue().Get("u2")
	assert.False(t, pending)
}

// TestStoreFailureLeavesQueueIntact forces a store failure mid-decision:
// the error surfaces, the session error slot is set, and the candidate
// stays queued so the decision can be re-issued.
func TestStoreFailureLeavesQueueIntact(t *testing.T) {
	e := setupEnv(t)
	e.seedUser(t, "u1", "Ada")
	e.seedUser(t, "u2", "Bea")

	rec := e.do(t, "u1", http.MethodGet, "/api/v1/discovery", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sess := e.appCtx.Sessions.Get("u1")
	require.Equal(t, 1, sess.Queue().Len())

	require.NoError(t, e.sqlDB.Close())

	rec = e.do(t, "u1", http.MethodPost, "/api/v1/swipes", gin.H{"targetUserId": "u2"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	assert.Equal(t, 1, sess.Queue().Len())
	assert.Error(t, sess.TakeError())
	assert.NoError(t, sess.TakeError(), "error slot clears after read")
}

func TestCannotDecideOnYourself(t *testing.T) {
	e := setupEnv(t)
	e.seedUser(t, "u1", "Ada")

	rec := e.do(t, "u1", http.MethodPost, "/api/v1/swipes", gin.H{"targetUserId": "u1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestRepositoryOutcomeSharedWithService pins the engine outcome labels
// the handler maps onto repository results.
func TestRepositoryOutcomeSharedWithService(t *testing.T) {
	e := setupEnv(t)
	ada := e.seedUser(t, "u1", "Ada")
	bea := e.seedUser(t, "u2", "Bea")

	repo := repository.NewMatchRepository(e.appCtx.DB)
	out, err := repo.DecideLike(context.Background(), ada, bea)
	require.NoError(t, err)
	assert.False(t, out.Matched)
}
