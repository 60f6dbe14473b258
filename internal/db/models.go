package db

import (
	"time"
)

// User profile record. IDs are opaque UUID strings issued at registration.
type User struct {
	ID           string   `gorm:"primaryKey;size:36" json:"id"`
	Email        string   `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Name         string   `gorm:"size:64;not null" json:"name"`
	Age          int      `gorm:"default:18" json:"age"`
	Bio          string   `gorm:"size:1024" json:"bio"`
	Photos       []string `gorm:"serializer:json" json:"photos"` // ordered, first photo is primary
	Gender       string   `gorm:"size:16" json:"gender"`
	InterestedIn string   `gorm:"size:16" json:"interestedIn"`
	Location     string   `gorm:"size:128" json:"location"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`

	Verified    bool   `gorm:"default:false" json:"isVerified"`
	Premium     bool   `gorm:"default:false" json:"isPremium"`
	PremiumType string `gorm:"size:32" json:"premiumType"`

	// Consumable counters. Stored and served as data; nothing in the
	// swipe path decrements them yet.
	LikesRemaining      int `gorm:"default:10" json:"likesRemaining"`
	SuperLikesRemaining int `gorm:"default:1" json:"superLikesRemaining"`
	BoostsRemaining     int `gorm:"default:0" json:"boostsRemaining"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Like is a directed edge: FromUserID expressed interest in ToUserID.
//
// Composite PK (FromUserID, ToUserID) makes re-likes idempotent: a
// second like for the same directed pair is a no-op insert.
type Like struct {
	FromUserID string    `gorm:"primaryKey;size:36" json:"fromUserId"`
	ToUserID   string    `gorm:"primaryKey;size:36;index:idx_to_created,priority:1" json:"toUserId"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_to_created,priority:2,sort:desc" json:"timestamp"`
}

// Pair status values.
const (
	PairLiked   = "liked"   // one side has liked, waiting on the other
	PairMatched = "matched" // both sides liked; a Match row exists
)

// PairState tracks the like/match state of an unordered user pair under
// its canonical key (UserLoID < UserHiID).
//
// The row is the serialization point for match creation: the transition
// liked -> matched is a single conditional UPDATE, so two users liking
// each other concurrently cannot both miss the reverse like and leave
// the pair stuck one-sided, nor create two Match rows for one pair.
type PairState struct {
	UserLoID    string    `gorm:"primaryKey;size:36"`
	UserHiID    string    `gorm:"primaryKey;size:36"`
	Status      string    `gorm:"size:16;not null"`
	InitiatorID string    `gorm:"size:36;not null"` // who liked first
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Match is the confirmed mutual pairing. User1 is the user whose like
// completed the pair. Names and photos are denormalized from the two
// profiles at creation time so match lists render without joins.
//
// LastMessage/LastMessageTime mirror the newest chat message
// (last-write-wins; eventually consistent with the messages table).
type Match struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	User1ID    string `gorm:"size:36;index" json:"user1Id"`
	User2ID    string `gorm:"size:36;index" json:"user2Id"`
	User1Name  string `gorm:"size:64" json:"user1Name"`
	User2Name  string `gorm:"size:64" json:"user2Name"`
	User1Photo string `gorm:"size:512" json:"user1Photo"`
	User2Photo string `gorm:"size:512" json:"user2Photo"`

	CreatedAt       time.Time `gorm:"autoCreateTime" json:"timestamp"`
	LastMessage     string    `gorm:"size:1024" json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
}

// Message is an append-only chat message within a match. Immutable after
// creation except for the read flag.
type Message struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	MatchID   string    `gorm:"size:36;index:idx_match_ts,priority:1;not null" json:"matchId"`
	SenderID  string    `gorm:"size:36;not null" json:"senderId"`
	Text      string    `gorm:"size:2048;not null" json:"text"`
	Timestamp time.Time `gorm:"index:idx_match_ts,priority:2;not null" json:"timestamp"`
	IsRead    bool      `gorm:"default:false" json:"isRead"`
}
