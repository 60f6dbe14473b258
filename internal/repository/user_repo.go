package repository

import (
	"context"

	"github.com/flamematch/backend/internal/db"

	"gorm.io/gorm"
)

// UserRepository provides data access methods for profile records.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update persists an owner-initiated profile update. The full record is
// written; ownership is enforced at the service boundary.
func (r *UserRepository) Update(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// FindDiscoverable returns candidate profiles for the discovery queue.
//
// Behavior:
//   - Excludes the caller's own profile.
//   - Excludes users the caller has already liked (a like edge exists);
//     passed users may reappear in a later session because passes are
//     never persisted.
//   - Capped at limit; ordered by creation time so results are stable
//     across the single fetch of a discovery session.
func (r *UserRepository) FindDiscoverable(
	ctx context.Context,
	excludeID string,
	limit int,
) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Table("users u").
		Where("u.id <> ?", excludeID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM likes l
				WHERE l.from_user_id = ?
				  AND l.to_user_id = u.id
			)`, excludeID).
		Order("u.created_at ASC, u.id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
