package repository

import (
	"context"

	"github.com/flamematch/backend/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository provides data access for matches and the pair-state
// records that guard their creation.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// DecideOutcome is the result of resolving a like decision.
type DecideOutcome struct {
	Matched bool
	Match   *db.Match // set when Matched
}

// canonicalPair orders two user ids into the (lo, hi) pair key.
func canonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// DecideLike resolves a like from actor to target into either a recorded
// like or a match, atomically.
//
// Behavior, inside one transaction:
//  1. Insert the directed like edge (idempotent; DoNothing on conflict).
//  2. Try to insert the pair-state row as "liked" with actor as
//     initiator. If the insert lands, the actor is first: outcome Liked.
//  3. Otherwise the pair row exists. A conditional UPDATE flips it
//     liked -> matched only when the other side initiated; exactly one
//     of two concurrent reciprocal likes wins that UPDATE, and the
//     winner creates the single Match row for the pair.
//  4. A repeat like by the initiator stays Liked; a like on an already
//     matched pair returns the existing match.
//
// On any error the transaction rolls back and nothing is recorded.
func (r *MatchRepository) DecideLike(
	ctx context.Context,
	actor, target db.User,
) (DecideOutcome, error) {
	lo, hi := canonicalPair(actor.ID, target.ID)
	var out DecideOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := db.Like{FromUserID: actor.ID, ToUserID: target.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return err
		}

		pair := db.PairState{
			UserLoID:    lo,
			UserHiID:    hi,
			Status:      db.PairLiked,
			InitiatorID: actor.ID,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pair)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			// first like on this pair
			return nil
		}

		upd := tx.Model(&db.PairState{}).
			Where("user_lo_id = ? AND user_hi_id = ? AND status = ? AND initiator_id <> ?",
				lo, hi, db.PairLiked, actor.ID).
			Update("status", db.PairMatched)
		if upd.Error != nil {
			return upd.Error
		}

		if upd.RowsAffected == 1 {
			match := db.Match{
				ID:         uuid.NewString(),
				User1ID:    actor.ID,
				User2ID:    target.ID,
				User1Name:  actor.Name,
				User2Name:  target.Name,
				User1Photo: primaryPhoto(actor),
				User2Photo: primaryPhoto(target),
			}
			if err := tx.Create(&match).Error; err != nil {
				return err
			}
			out = DecideOutcome{Matched: true, Match: &match}
			return nil
		}

		// No transition: either the actor is re-liking their own one-sided
		// pair, or the pair is already matched.
		var state db.PairState
		if err := tx.First(&state, "user_lo_id = ? AND user_hi_id = ?", lo, hi).Error; err != nil {
			return err
		}
		if state.Status == db.PairMatched {
			match, err := findPairMatch(tx, actor.ID, target.ID)
			if err != nil {
				return err
			}
			out = DecideOutcome{Matched: true, Match: match}
		}
		return nil
	})
	if err != nil {
		return DecideOutcome{}, err
	}
	return out, nil
}

// findPairMatch loads the unique match for an unordered user pair.
func findPairMatch(tx *gorm.DB, a, b string) (*db.Match, error) {
	var match db.Match
	err := tx.
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", a, b, b, a).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func primaryPhoto(u db.User) string {
	if len(u.Photos) == 0 {
		return ""
	}
	return u.Photos[0]
}

// GetByID loads a single match.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*db.Match, error) {
	var match db.Match
	if err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// FindByEitherSide returns all matches where the user is user1 or user2,
// sorted descending by creation time (newest match first).
func (r *MatchRepository) FindByEitherSide(ctx context.Context, userID string) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// UpdateLastMessage writes the denormalized last-message fields.
// Concurrent sends to the same match race here; last write wins, which
// is accepted for this read-optimization duplicate.
func (r *MatchRepository) UpdateLastMessage(ctx context.Context, matchID string, msg *db.Message) error {
	res := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]interface{}{
			"last_message":      msg.Text,
			"last_message_time": msg.Timestamp,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
