package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"physiohub-gateway/internal/adapters/persistence/models"
	"physiohub-gateway/internal/adapters/persistence/repositories"
	"physiohub-gateway/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionService owns the token store: it persists the upstream token
// pair plus the serialized user and therapist-profile records, and
// restores them into in-memory sessions without an upstream round-trip.
type SessionService struct {
	sessions repositories.SessionRepository
	ttl      time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(sessions repositories.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		sessions: sessions,
		ttl:      ttl,
	}
}

// Create persists a fresh session after a successful login. Token and
// user are written together in a single row insert.
func (s *SessionService) Create(ctx context.Context, accessToken, refreshToken string, user *domain.User) (*domain.Session, error) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:           uuid.New().String(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		ExpiresAt:    time.Now().Add(s.ttl),
	}

	row := &models.Session{
		ID:           session.ID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserJSON:     string(userJSON),
		UserID:       user.ID,
		Role:         string(user.Role),
		ExpiresAt:    session.ExpiresAt,
	}

	if err := s.sessions.Create(ctx, row); err != nil {
		return nil, err
	}

	return session, nil
}

// Get restores a session from the store. A missing row is ErrNoSession;
// an expired row is ErrSessionExpired. A user blob that no longer parses
// is also treated as "no session", but the row is left in place rather
// than destroyed — only an explicit backend rejection clears storage.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	row, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoSession
		}
		return nil, err
	}

	if row.IsExpired() {
		return nil, domain.ErrSessionExpired
	}

	var user domain.User
	if err := json.Unmarshal([]byte(row.UserJSON), &user); err != nil {
		log.Printf("⚠️ Session %s has unreadable user record: %v", row.ID, err)
		return nil, domain.ErrNoSession
	}

	session := &domain.Session{
		ID:           row.ID,
		AccessToken:  row.Token,
		RefreshToken: row.RefreshToken,
		User:         &user,
		ExpiresAt:    row.ExpiresAt,
	}

	// A corrupt profile blob is non-fatal: the user stays authenticated
	// without a role profile and the refresher will repopulate it.
	if row.ProfileJSON != nil && *row.ProfileJSON != "" {
		var profile domain.TherapistProfile
		if err := json.Unmarshal([]byte(*row.ProfileJSON), &profile); err == nil {
			session.Profile = &profile
		} else {
			log.Printf("⚠️ Session %s has unreadable therapist profile: %v", row.ID, err)
		}
	}

	return session, nil
}

// SaveProfile writes only the therapist-profile column. A nil profile
// clears the cached copy.
func (s *SessionService) SaveProfile(ctx context.Context, id string, profile *domain.TherapistProfile) error {
	if profile == nil {
		return s.sessions.UpdateProfile(ctx, id, nil)
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	encoded := string(data)
	return s.sessions.UpdateProfile(ctx, id, &encoded)
}

// SaveUser writes only the user column after a profile update.
func (s *SessionService) SaveUser(ctx context.Context, id string, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.sessions.UpdateUser(ctx, id, string(data))
}

// Destroy removes the session row. All four persisted values (token,
// refresh token, user, profile) go together.
func (s *SessionService) Destroy(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// PurgeExpired removes sessions past their lifetime.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

// LiveTherapistSessions restores every live therapist session, used at
// startup to rehydrate the profile refresh loops.
func (s *SessionService) LiveTherapistSessions(ctx context.Context) ([]*domain.Session, error) {
	rows, err := s.sessions.ListLiveByRole(ctx, string(domain.RoleTherapist))
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(rows))
	for _, row := range rows {
		session, err := s.Get(ctx, row.ID)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// CountLive counts live sessions, for the health endpoint.
func (s *SessionService) CountLive(ctx context.Context) (int64, error) {
	return s.sessions.CountLive(ctx)
}
