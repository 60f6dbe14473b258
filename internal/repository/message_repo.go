package repository

import (
	"context"
	"time"

	"github.com/flamematch/backend/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository provides data access for chat messages.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Insert appends a new message to a match thread and returns it.
// The id and timestamp are generated here so the caller can propagate
// the exact same timestamp to the match summary.
func (r *MessageRepository) Insert(
	ctx context.Context,
	matchID, senderID, text string,
) (*db.Message, error) {
	msg := db.Message{
		ID:        uuid.NewString(),
		MatchID:   matchID,
		SenderID:  senderID,
		Text:      text,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		IsRead:    false,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByMatch returns the full thread for a match, ordered ascending by
// timestamp with the id as tiebreaker so every reader observes the same
// total order.
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("timestamp ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead flips the read flag on every message in the match that was
// sent by the other side. Returns how many rows changed.
func (r *MessageRepository) MarkRead(ctx context.Context, matchID, readerID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("match_id = ? AND sender_id <> ? AND is_read = ?", matchID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// CountUnread counts messages in the match addressed to readerID that
// are still unread. DB fallback behind the Redis unread counter.
func (r *MessageRepository) CountUnread(ctx context.Context, matchID, readerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("match_id = ? AND sender_id <> ? AND is_read = ?", matchID, readerID, false).
		Count(&count).Error
	return count, err
}
