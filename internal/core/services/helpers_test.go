package services

import (
	"context"
	"encoding/json"
	"sync"

	"physiohub-gateway/internal/adapters/persistence/models"
	"physiohub-gateway/internal/adapters/upstream"
	"physiohub-gateway/internal/core/domain"

	"gorm.io/gorm"
)

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	mu             sync.Mutex
	rows           map[string]*models.Session
	profileUpdates int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: map[string]*models.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.rows[session.ID] = &clone
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeSessionRepo) UpdateProfile(_ context.Context, id string, profileJSON *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profileUpdates++
	if row, ok := r.rows[id]; ok {
		row.ProfileJSON = profileJSON
	}
	return nil
}

func (r *fakeSessionRepo) UpdateUser(_ context.Context, id string, userJSON string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		row.UserJSON = userJSON
	}
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, row := range r.rows {
		if row.IsExpired() {
			delete(r.rows, id)
			purged++
		}
	}
	return purged, nil
}

func (r *fakeSessionRepo) ListLiveByRole(_ context.Context, role string) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []*models.Session
	for _, row := range r.rows {
		if row.Role == role && !row.IsExpired() {
			clone := *row
			rows = append(rows, &clone)
		}
	}
	return rows, nil
}

func (r *fakeSessionRepo) CountLive(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if !row.IsExpired() {
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok
}

func (r *fakeSessionRepo) profileWriteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profileUpdates
}

// fakeUpstream is a configurable UpstreamClient.
type fakeUpstream struct {
	mu sync.Mutex

	issueTokenFn   func(field upstream.CredentialField, identifier, password string) (*upstream.TokenResult, error)
	revokeTokenErr error
	fetchProfileFn func(bearer string, userID uint) (*domain.TherapistProfile, bool, error)
	updateUserFn   func(bearer string, payload json.RawMessage) (*domain.User, error)
	registerFn     func(payload json.RawMessage) (json.RawMessage, error)
	resetErr       error
	auditFn        func(bearer string, page, limit int) (*upstream.AuditPage, error)

	issuedField   upstream.CredentialField
	revokeCalls   int
	profileCalls  int
	resetCalls    int
}

func (f *fakeUpstream) IssueToken(_ context.Context, field upstream.CredentialField, identifier, password string) (*upstream.TokenResult, error) {
	f.mu.Lock()
	f.issuedField = field
	f.mu.Unlock()
	if f.issueTokenFn != nil {
		return f.issueTokenFn(field, identifier, password)
	}
	return &upstream.TokenResult{Access: "access", Refresh: "refresh", User: domain.User{ID: 1, Role: domain.RolePatient}}, nil
}

func (f *fakeUpstream) RevokeToken(_ context.Context, _ string) error {
	f.mu.Lock()
	f.revokeCalls++
	f.mu.Unlock()
	return f.revokeTokenErr
}

func (f *fakeUpstream) Register(_ context.Context, payload json.RawMessage) (json.RawMessage, error) {
	if f.registerFn != nil {
		return f.registerFn(payload)
	}
	return json.RawMessage(`{"status":"pending"}`), nil
}

func (f *fakeUpstream) ResetPassword(_ context.Context, _ string) error {
	f.mu.Lock()
	f.resetCalls++
	f.mu.Unlock()
	return f.resetErr
}

func (f *fakeUpstream) UpdateProfile(_ context.Context, bearer string, payload json.RawMessage) (*domain.User, error) {
	if f.updateUserFn != nil {
		return f.updateUserFn(bearer, payload)
	}
	return &domain.User{ID: 1}, nil
}

func (f *fakeUpstream) FetchTherapistProfile(_ context.Context, bearer string, userID uint) (*domain.TherapistProfile, bool, error) {
	f.mu.Lock()
	f.profileCalls++
	f.mu.Unlock()
	if f.fetchProfileFn != nil {
		return f.fetchProfileFn(bearer, userID)
	}
	return nil, false, nil
}

func (f *fakeUpstream) FetchAuditLogs(_ context.Context, bearer string, page, limit int) (*upstream.AuditPage, error) {
	if f.auditFn != nil {
		return f.auditFn(bearer, page, limit)
	}
	return &upstream.AuditPage{}, nil
}

func (f *fakeUpstream) profileFetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileCalls
}

func (f *fakeUpstream) issuedWith() upstream.CredentialField {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issuedField
}
