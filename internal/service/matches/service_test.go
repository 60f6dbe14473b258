package matches_test

import (
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
	"github.com/flamematch/backend/internal/server"
	"github.com/flamematch/backend/internal/service/matches"
)

type env struct {
	appCtx *app.AppContext
	tokens *auth.Tokens
	router *gin.Engine
	sqlDB  *sql.DB
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
		matches.NewRegistrar(appCtx),
	})
	return &env{appCtx: appCtx, tokens: tokens, router: router, sqlDB: sqlDB}
}

func (e *env) get(t *testing.T, userID, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	token, err := e.tokens.Issue(userID)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func seedMatches(t *testing.T, e *env) {
	t.Helper()
	rows := []db.Match{
		{ID: "m-old", User1ID: "u1", User2ID: "u2", CreatedAt: time.Now().Add(-2 * time.Hour)},
		{ID: "m-mid", User1ID: "u3", User2ID: "u1", CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "m-new", User1ID: "u1", User2ID: "u4", CreatedAt: time.Now()},
		{ID: "m-none", User1ID: "u5", User2ID: "u6", CreatedAt: time.Now()},
	}
	require.NoError(t, e.appCtx.DB.Create(&rows).Error)
}

type listResponse struct {
	Matches []db.Match `json:"matches"`
	Stale   bool       `json:"stale"`
	Error   string     `json:"error"`
}

func TestListNewestFirstEitherSide(t *testing.T) {
	e := setupEnv(t)
	seedMatches(t, e)

	rec := e.get(t, "u1", "/api/v1/matches")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 3)
	assert.Equal(t, "m-new", resp.Matches[0].ID)
	assert.Equal(t, "m-mid", resp.Matches[1].ID)
	assert.Equal(t, "m-old", resp.Matches[2].ID)
	assert.False(t, resp.Stale)
}

// TestStoreFailureServesCachedList: after one successful load, a store
// failure serves the previous list plus the error signal instead of
// clearing the screen.
func TestStoreFailureServesCachedList(t *testing.T) {
	e := setupEnv(t)
	seedMatches(t, e)

	rec := e.get(t, "u1", "/api/v1/matches")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, e.sqlDB.Close())

	rec = e.get(t, "u1", "/api/v1/matches")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Stale)
	assert.NotEmpty(t, resp.Error)
	assert.Len(t, resp.Matches, 3, "cached list survives the failure")

	assert.Error(t, e.appCtx.Sessions.Get("u1").TakeError())
}

func TestGetChecksParticipation(t *testing.T) {
	e := setupEnv(t)
	seedMatches(t, e)

	rec := e.get(t, "u1", "/api/v1/matches/m-old")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.get(t, "u1", "/api/v1/matches/m-none")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.get(t, "u1", "/api/v1/matches/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
