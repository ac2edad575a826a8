package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"physiohub-gateway/internal/adapters/upstream"
	"physiohub-gateway/internal/core/domain"
)

// User-facing messages for classified authentication failures.
const (
	msgInvalidCredentials = "Invalid credentials. Please check your login details and try again."
	msgLoginForbidden     = "Your account does not have permission to sign in."
	msgServiceUnavailable = "Authentication service is unavailable. Please try again later."
	msgValidationFallback = "Validation failed. Please review the form and try again."
	msgConnectivity       = "Cannot reach the server. Please check your connection and try again."
	msgGenericPrefix      = "Request failed"
)

// AuthService executes authentication flows against the practice
// backend and manages the resulting sessions.
type AuthService struct {
	upstream UpstreamClient
	sessions *SessionService
	profiles *ProfileService
}

// NewAuthService creates a new auth service
func NewAuthService(upstream UpstreamClient, sessions *SessionService, profiles *ProfileService) *AuthService {
	return &AuthService{
		upstream: upstream,
		sessions: sessions,
		profiles: profiles,
	}
}

// LoginResult is a successful login: the persisted session plus the
// role-based route the front-end should redirect to.
type LoginResult struct {
	Session  *domain.Session
	Redirect string
}

// Login exchanges an identifier and password for a session. The
// identifier is classified into the single credential field the token
// endpoint expects. Ordering is strict: the session (tokens + user) is
// persisted first, then the role-profile fetch runs, then the redirect
// is returned — a failed profile fetch never fails the login.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	field := upstream.ClassifyIdentifier(identifier)

	result, err := s.upstream.IssueToken(ctx, field, identifier, password)
	if err != nil {
		return nil, s.classify(err)
	}

	user := result.User
	session, err := s.sessions.Create(ctx, result.Access, result.Refresh, &user)
	if err != nil {
		return nil, err
	}

	// Best-effort profile warm-up; the session is already valid and
	// usable whether or not this succeeds.
	if user.Role == domain.RoleTherapist {
		if _, _, err := s.profiles.Ensure(ctx, session); err != nil {
			log.Printf("⚠️ Post-login profile fetch failed for user %d: %v", user.ID, err)
		}
		s.profiles.Track(session)
	}

	log.Printf("✅ User logged in: %s (%s)", user.FullName(), user.Role)

	return &LoginResult{
		Session:  session,
		Redirect: domain.DashboardRoute(user.Role),
	}, nil
}

// Logout revokes the refresh token upstream on a best-effort basis, then
// unconditionally tears down the refresh loop and destroys the session
// row. Local cleanup runs even when the upstream call fails.
func (s *AuthService) Logout(ctx context.Context, session *domain.Session) error {
	if session.RefreshToken != "" {
		if err := s.upstream.RevokeToken(ctx, session.RefreshToken); err != nil {
			log.Printf("⚠️ Upstream token revocation failed (continuing logout): %v", err)
		}
	}

	s.profiles.Release(session.ID)

	if err := s.sessions.Destroy(ctx, session.ID); err != nil {
		return err
	}

	log.Printf("✅ User logged out: session %s", session.ID)
	return nil
}

// Register forwards a registration payload to the backend and returns
// its answer. Failures are classified the same way as login failures.
func (s *AuthService) Register(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	result, err := s.upstream.Register(ctx, payload)
	if err != nil {
		return nil, s.classify(err)
	}
	return result, nil
}

// ResetPassword requests a password reset for an email address.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	if err := s.upstream.ResetPassword(ctx, email); err != nil {
		return s.classify(err)
	}
	return nil
}

// UpdateProfile updates the user's identity record upstream and keeps
// the stored session copy in sync. A 401 means the backend no longer
// accepts the session.
func (s *AuthService) UpdateProfile(ctx context.Context, session *domain.Session, payload json.RawMessage) (*domain.User, error) {
	user, err := s.upstream.UpdateProfile(ctx, session.AccessToken, payload)
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			s.profiles.Release(session.ID)
			_ = s.sessions.Destroy(ctx, session.ID)
			return nil, domain.ErrSessionInvalid
		}
		return nil, s.classify(err)
	}

	if err := s.sessions.SaveUser(ctx, session.ID, user); err != nil {
		log.Printf("⚠️ Failed to persist updated user for session %s: %v", session.ID, err)
	}
	session.User = user

	// Role transitions re-aim the refresher: gaining the therapist role
	// starts a loop, losing it ends one. Track is idempotent for sessions
	// already being refreshed.
	if user.Role == domain.RoleTherapist {
		s.profiles.Track(session)
	} else {
		s.profiles.Release(session.ID)
	}

	return user, nil
}

// classify maps an upstream failure onto a user-facing AuthError:
// 401 invalid credentials, 403 insufficient permission, 404 service
// unavailable, 400 the first field-level validation message, any other
// status a generic message carrying the backend's detail, and a
// transport failure a connectivity message.
func (s *AuthService) classify(err error) error {
	var statusErr *upstream.StatusError
	if !errors.As(err, &statusErr) {
		return domain.NewAuthError(http.StatusServiceUnavailable, msgConnectivity, domain.ErrConnectivityFailure)
	}

	switch statusErr.Code {
	case http.StatusUnauthorized:
		return domain.NewAuthError(http.StatusUnauthorized, msgInvalidCredentials, domain.ErrInvalidCredentials)
	case http.StatusForbidden:
		return domain.NewAuthError(http.StatusForbidden, msgLoginForbidden, domain.ErrLoginForbidden)
	case http.StatusNotFound:
		return domain.NewAuthError(http.StatusServiceUnavailable, msgServiceUnavailable, domain.ErrServiceUnavailable)
	case http.StatusBadRequest:
		message := statusErr.FieldMessage()
		if message == "" {
			message = msgValidationFallback
		}
		return domain.NewAuthError(http.StatusBadRequest, message, domain.ErrValidationFailed)
	default:
		message := msgGenericPrefix
		if detail := statusErr.Detail(); detail != "" {
			message = msgGenericPrefix + ": " + detail
		}
		return domain.NewAuthError(http.StatusBadGateway, message, domain.ErrInternalServer)
	}
}
