package repositories

import (
	"context"
	"time"

	"physiohub-gateway/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create creates a new session row
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetByID gets a session by its ID
func (r *sessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateProfile writes only the therapist_profile column. A nil value
// clears the cached profile.
func (r *sessionRepository) UpdateProfile(ctx context.Context, id string, profileJSON *string) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Update("therapist_profile", profileJSON).Error
}

// UpdateUser writes only the user column
func (r *sessionRepository) UpdateUser(ctx context.Context, id string, userJSON string) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Update("user", userJSON).Error
}

// Delete removes a session row
func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Session{}).Error
}

// DeleteExpired removes all sessions past their lifetime and returns how
// many rows were purged
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

// ListLiveByRole lists non-expired sessions for a role
func (r *sessionRepository) ListLiveByRole(ctx context.Context, role string) ([]*models.Session, error) {
	var sessions []*models.Session
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Where("expires_at > ?", time.Now()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountLive counts non-expired sessions
func (r *sessionRepository) CountLive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("expires_at > ?", time.Now()).
		Count(&count).Error
	return count, err
}
