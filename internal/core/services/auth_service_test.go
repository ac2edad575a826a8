package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"physiohub-gateway/internal/adapters/upstream"
	"physiohub-gateway/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(up *fakeUpstream) (*AuthService, *fakeSessionRepo) {
	repo := newFakeSessionRepo()
	sessions := NewSessionService(repo, time.Hour)
	profiles := NewProfileService(up, sessions, time.Minute)
	return NewAuthService(up, sessions, profiles), repo
}

func TestLoginClassifiesIdentifier(t *testing.T) {
	tests := []struct {
		identifier string
		want       upstream.CredentialField
	}{
		{"anna@example.com", upstream.FieldEmail},
		{"0812345678", upstream.FieldPhone},
		{"anna.k", upstream.FieldUsername},
		{"anna+pt@clinic.org", upstream.FieldEmail},
		{"12ab34", upstream.FieldUsername},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			up := &fakeUpstream{}
			svc, _ := newAuthFixture(up)

			_, err := svc.Login(context.Background(), tt.identifier, "secret")
			require.NoError(t, err)
			assert.Equal(t, tt.want, up.issuedWith())
		})
	}
}

func TestLoginRedirectByRole(t *testing.T) {
	tests := []struct {
		role     domain.Role
		redirect string
	}{
		{domain.RoleAdmin, "/admin/dashboard"},
		{domain.RoleDoctor, "/doctor/dashboard"},
		{domain.RoleTherapist, "/therapist/dashboard"},
		{domain.RolePatient, "/patient/dashboard"},
		{domain.Role("receptionist"), "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			up := &fakeUpstream{
				issueTokenFn: func(_ upstream.CredentialField, _, _ string) (*upstream.TokenResult, error) {
					return &upstream.TokenResult{
						Access:  "access",
						Refresh: "refresh",
						User:    domain.User{ID: 7, Role: tt.role},
					}, nil
				},
			}
			svc, repo := newAuthFixture(up)

			result, err := svc.Login(context.Background(), "someone", "secret")
			require.NoError(t, err)
			assert.Equal(t, tt.redirect, result.Redirect)
			assert.True(t, repo.has(result.Session.ID))
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	up := &fakeUpstream{
		issueTokenFn: func(_ upstream.CredentialField, _, _ string) (*upstream.TokenResult, error) {
			return nil, &upstream.StatusError{Code: http.StatusUnauthorized}
		},
	}
	svc, _ := newAuthFixture(up)

	_, err := svc.Login(context.Background(), "anna@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Contains(t, authErr.Message, "Invalid credentials")
}

func TestLoginValidationMessagePriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"explicit error field wins", `{"error":"account locked","username":["taken"]}`, "account locked"},
		{"detail beats field arrays", `{"detail":"bad payload","password":["too short"]}`, "bad payload"},
		{"username array", `{"username":["taken"]}`, "taken"},
		{"password array", `{"password":["too short"],"email":["invalid"]}`, "too short"},
		{"email array", `{"email":["invalid"]}`, "invalid"},
		{"phone array", `{"phone":["not a number"]}`, "not a number"},
		{"empty body falls back", `{}`, "Validation failed. Please review the form and try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUpstream{
				issueTokenFn: func(_ upstream.CredentialField, _, _ string) (*upstream.TokenResult, error) {
					return nil, &upstream.StatusError{Code: http.StatusBadRequest, Body: []byte(tt.body)}
				},
			}
			svc, _ := newAuthFixture(up)

			_, err := svc.Login(context.Background(), "anna", "pw")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidationFailed))

			var authErr *domain.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.want, authErr.Message)
		})
	}
}

func TestLoginStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		upErr    error
		sentinel error
		status   int
	}{
		{"forbidden", &upstream.StatusError{Code: http.StatusForbidden}, domain.ErrLoginForbidden, http.StatusForbidden},
		{"not found is unavailable", &upstream.StatusError{Code: http.StatusNotFound}, domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"transport failure", errors.New("dial tcp: connection refused"), domain.ErrConnectivityFailure, http.StatusServiceUnavailable},
		{"server error is generic", &upstream.StatusError{Code: http.StatusInternalServerError, Body: []byte(`{"detail":"boom"}`)}, domain.ErrInternalServer, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUpstream{
				issueTokenFn: func(_ upstream.CredentialField, _, _ string) (*upstream.TokenResult, error) {
					return nil, tt.upErr
				},
			}
			svc, _ := newAuthFixture(up)

			_, err := svc.Login(context.Background(), "anna", "pw")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))

			var authErr *domain.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.status, authErr.Status)
		})
	}
}

func TestLoginSurvivesProfileFetchFailure(t *testing.T) {
	up := &fakeUpstream{
		issueTokenFn: func(_ upstream.CredentialField, _, _ string) (*upstream.TokenResult, error) {
			return &upstream.TokenResult{
				Access:  "access",
				Refresh: "refresh",
				User:    domain.User{ID: 3, Role: domain.RoleTherapist},
			}, nil
		},
		fetchProfileFn: func(_ string, _ uint) (*domain.TherapistProfile, bool, error) {
			return nil, false, errors.New("upstream hiccup")
		},
	}
	svc, repo := newAuthFixture(up)

	result, err := svc.Login(context.Background(), "therapist@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, repo.has(result.Session.ID))
	assert.Nil(t, result.Session.Profile)
}

func TestLogoutClearsSessionEvenWhenRevocationFails(t *testing.T) {
	up := &fakeUpstream{revokeTokenErr: errors.New("network down")}
	svc, repo := newAuthFixture(up)

	result, err := svc.Login(context.Background(), "anna@example.com", "pw")
	require.NoError(t, err)
	require.True(t, repo.has(result.Session.ID))

	err = svc.Logout(context.Background(), result.Session)
	require.NoError(t, err)
	assert.False(t, repo.has(result.Session.ID))
	assert.Equal(t, 1, up.revokeCalls)
}

func TestUpdateProfileRoleGainStartsRefresher(t *testing.T) {
	up := &fakeUpstream{}
	repo := newFakeSessionRepo()
	sessions := NewSessionService(repo, time.Hour)
	profiles := NewProfileService(up, sessions, 20*time.Millisecond)
	defer profiles.Stop()
	svc := NewAuthService(up, sessions, profiles)

	// Default login is a patient, so no refresh loop runs yet.
	result, err := svc.Login(context.Background(), "anna@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, 0, up.profileFetchCount())

	up.updateUserFn = func(_ string, _ json.RawMessage) (*domain.User, error) {
		return &domain.User{ID: 1, Role: domain.RoleTherapist}, nil
	}

	user, err := svc.UpdateProfile(context.Background(), result.Session, json.RawMessage(`{"role":"therapist"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTherapist, user.Role)

	// The refresher starts on the transition, not at next login.
	require.Eventually(t, func() bool {
		return up.profileFetchCount() >= 1
	}, time.Second, 5*time.Millisecond, "refresh loop never started after role gain")
}

func TestUpdateProfileRoleLossStopsRefresher(t *testing.T) {
	up := &fakeUpstream{
		issueTokenFn: func(_ upstream.CredentialField, _, _ string) (*upstream.TokenResult, error) {
			return &upstream.TokenResult{
				Access:  "access",
				Refresh: "refresh",
				User:    domain.User{ID: 4, Role: domain.RoleTherapist},
			}, nil
		},
	}
	repo := newFakeSessionRepo()
	sessions := NewSessionService(repo, time.Hour)
	profiles := NewProfileService(up, sessions, 20*time.Millisecond)
	defer profiles.Stop()
	svc := NewAuthService(up, sessions, profiles)

	result, err := svc.Login(context.Background(), "anna@example.com", "pw")
	require.NoError(t, err)

	up.updateUserFn = func(_ string, _ json.RawMessage) (*domain.User, error) {
		return &domain.User{ID: 4, Role: domain.RoleDoctor}, nil
	}

	_, err = svc.UpdateProfile(context.Background(), result.Session, json.RawMessage(`{"role":"doctor"}`))
	require.NoError(t, err)

	// Any in-flight tick finishes, then the loop must stay quiet.
	time.Sleep(50 * time.Millisecond)
	settled := up.profileFetchCount()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, up.profileFetchCount())
}

func TestUpdateProfileRejectedSessionIsDestroyed(t *testing.T) {
	up := &fakeUpstream{}
	svc, repo := newAuthFixture(up)

	result, err := svc.Login(context.Background(), "anna@example.com", "pw")
	require.NoError(t, err)

	up.updateUserFn = func(_ string, _ json.RawMessage) (*domain.User, error) {
		return nil, &upstream.StatusError{Code: http.StatusUnauthorized}
	}

	_, err = svc.UpdateProfile(context.Background(), result.Session, json.RawMessage(`{"first_name":"Anna"}`))
	require.ErrorIs(t, err, domain.ErrSessionInvalid)
	assert.False(t, repo.has(result.Session.ID))
}
