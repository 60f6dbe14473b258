// Package likes serves the "liked you" screen: who liked the caller,
// who liked them without a match yet, and the cached like count.
package likes

import (
	"net/http"
	"strconv"

	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"
	svcErr "github.com/flamematch/backend/internal/errors"
	"github.com/flamematch/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Service implements the received-likes endpoints.
type Service struct {
	appCtx   *app.AppContext
	likeRepo *repository.LikeRepository
}

// NewService wires the likes service from AppContext.
// Dependencies include:
//   - DB connection (via LikeRepository)
//   - RedisCache for counters from AppContext
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		likeRepo: repository.NewLikeRepository(appCtx.DB),
	}
}

type liker struct {
	UserID        string `json:"userId"`
	UnixTimestamp int64  `json:"unixTimestamp"`
}

type likersResponse struct {
	Likers              []liker `json:"likers"`
	NextPaginationToken *string `json:"nextPaginationToken,omitempty"`
}

// ListReceived returns everyone who liked the caller, newest first,
// with cursor pagination.
func (s *Service) ListReceived(c *gin.Context) {
	s.listWith(c, s.likeRepo.GetLikers)
}

// ListReceivedNew returns likers the caller has not matched with yet.
func (s *Service) ListReceivedNew(c *gin.Context) {
	s.listWith(c, s.likeRepo.GetNewLikers)
}

// CountReceived returns how many users liked the caller.
// Cache-first strategy:
//  1. Attempts to read the Redis counter.
//  2. On a miss, falls back to the DB and stores the result with a TTL.
func (s *Service) CountReceived(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	key := s.appCtx.RedisCache.KeyForLikeCount(userID)

	if n, hit, err := s.appCtx.RedisCache.GetCounter(ctx, key); err == nil && hit {
		c.JSON(http.StatusOK, gin.H{"count": n})
		return
	}

	count, err := s.likeRepo.CountLikers(ctx, userID)
	if err != nil {
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}
	if err := s.appCtx.RedisCache.SetCounter(ctx, key, count); err != nil {
		s.appCtx.Logger.Warn("like counter cache set failed", "key", key, "err", err)
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

type likersQuery = repository.LikersQuery

func (s *Service) listWith(c *gin.Context, query likersQuery) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	var token *string
	if raw := c.Query("paginationToken"); raw != "" {
		token = &raw
	}
	limit := defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= maxPageSize {
			limit = n
		}
	}

	decisions, nextToken, err := query(c.Request.Context(), userID, token, limit)
	if err != nil {
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}

	resp := likersResponse{Likers: []liker{}}
	for _, d := range decisions {
		resp.Likers = append(resp.Likers, liker{
			UserID:        d.FromUserID,
			UnixTimestamp: d.CreatedAt.UnixMilli(),
		})
	}
	resp.NextPaginationToken = nextToken

	c.JSON(http.StatusOK, resp)
}
