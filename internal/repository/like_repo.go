package repository

import (
	"context"
	"time"

	"github.com/flamematch/backend/internal/db"
	"github.com/flamematch/backend/internal/utils/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikersQuery is the shared signature of GetLikers and GetNewLikers,
// letting callers select a variant without duplicating paging plumbing.
type LikersQuery func(ctx context.Context, recipientID string, paginationToken *string, limit int) ([]db.Like, *string, error)

// LikeRepository provides data access methods for directed like edges.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Insert records a like edge from -> to.
//
// Behavior:
//   - Composite PK (from_user_id, to_user_id) plus DoNothing makes
//     re-likes idempotent: the original timestamp is preserved.
func (r *LikeRepository) Insert(ctx context.Context, fromID, toID string) error {
	like := db.Like{FromUserID: fromID, ToUserID: toID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
}

// HasLiked checks whether a like edge from -> to exists.
func (r *LikeRepository) HasLiked(ctx context.Context, fromID, toID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		Count(&count).Error
	return count > 0, err
}

// GetLikers returns all users who liked the given recipient.
//
// Behavior:
//   - Ordered by created_at DESC, from_user_id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *LikeRepository) GetLikers(
	ctx context.Context,
	recipientID string,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.to_user_id = ?", recipientID)
	return r.pageLikers(query, paginationToken, limit)
}

// GetNewLikers returns users who liked the recipient but have not been
// matched with them yet.
//
// Behavior:
//   - Excludes likers whose pair with the recipient is already in the
//     matched state.
//   - Same ordering and pagination as GetLikers.
func (r *LikeRepository) GetNewLikers(
	ctx context.Context,
	recipientID string,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.to_user_id = ?", recipientID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM pair_states p
				WHERE p.status = ?
				  AND ((p.user_lo_id = l.from_user_id AND p.user_hi_id = l.to_user_id)
				    OR (p.user_lo_id = l.to_user_id AND p.user_hi_id = l.from_user_id))
			)`, db.PairMatched)
	return r.pageLikers(query, paginationToken, limit)
}

// pageLikers applies the shared cursor ordering and builds the next token.
func (r *LikeRepository) pageLikers(
	query *gorm.DB,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query = query.
		Order("l.created_at DESC, l.from_user_id DESC").
		Limit(limit + 1)

	if cursor.LikerID != "" && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(l.created_at < ? OR (l.created_at = ? AND l.from_user_id < ?))",
			ts, ts, cursor.LikerID,
		)
	}

	var likes []db.Like
	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LikerID:     last.FromUserID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountLikers returns how many users liked the given recipient.
// Used in conjunction with the Redis counter cache (DB is fallback).
func (r *LikeRepository) CountLikers(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("to_user_id = ?", recipientID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
