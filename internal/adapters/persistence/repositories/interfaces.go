package repositories

import (
	"context"

	"physiohub-gateway/internal/adapters/persistence/models"
)

// SessionRepository defines session repository interface
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	UpdateProfile(ctx context.Context, id string, profileJSON *string) error
	UpdateUser(ctx context.Context, id string, userJSON string) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
	ListLiveByRole(ctx context.Context, role string) ([]*models.Session, error)
	CountLive(ctx context.Context) (int64, error)
}
