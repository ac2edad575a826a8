package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"physiohub-gateway/internal/core/domain"
)

// fetchTimeout bounds a single profile fetch, both inside a request and
// on a background tick.
const fetchTimeout = 10 * time.Second

// ProfileService keeps therapist role-profiles current. It serves
// one-shot fetches for the feature gate and runs a background refresh
// loop per live therapist session so server-side approval changes show
// up without user action.
type ProfileService struct {
	upstream UpstreamClient
	sessions *SessionService
	interval time.Duration

	mu    sync.Mutex
	loops map[string]chan struct{}
	wg    sync.WaitGroup
}

// NewProfileService creates a new profile service
func NewProfileService(upstream UpstreamClient, sessions *SessionService, interval time.Duration) *ProfileService {
	return &ProfileService{
		upstream: upstream,
		sessions: sessions,
		interval: interval,
		loops:    make(map[string]chan struct{}),
	}
}

// Ensure returns the session's role profile, fetching it through the
// fallback chain when no copy is cached yet. Non-therapist sessions
// never have a profile. Exhaustion of the chain is not an error; a
// backend rejection destroys the session and surfaces ErrSessionInvalid.
func (s *ProfileService) Ensure(ctx context.Context, session *domain.Session) (*domain.TherapistProfile, bool, error) {
	if session.Role() != domain.RoleTherapist {
		return nil, false, nil
	}
	if session.Profile != nil {
		return session.Profile, true, nil
	}

	profile, found, err := s.upstream.FetchTherapistProfile(ctx, session.AccessToken, session.User.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			s.Release(session.ID)
			_ = s.sessions.Destroy(ctx, session.ID)
		}
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	if err := s.sessions.SaveProfile(ctx, session.ID, profile); err != nil {
		log.Printf("⚠️ Failed to cache therapist profile for session %s: %v", session.ID, err)
	}
	session.Profile = profile
	return profile, true, nil
}

// Track starts the background refresh loop for a therapist session.
// Tracking a session twice, or a non-therapist session, is a no-op.
func (s *ProfileService) Track(session *domain.Session) {
	if session.Role() != domain.RoleTherapist {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.loops[session.ID]; exists {
		return
	}

	stop := make(chan struct{})
	s.loops[session.ID] = stop
	s.wg.Add(1)
	go s.run(session.ID, session.AccessToken, session.User.ID, session.ExpiresAt, session.Profile, stop)
}

// Release stops the refresh loop for a session, if one is running.
func (s *ProfileService) Release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stop, exists := s.loops[sessionID]; exists {
		close(stop)
		delete(s.loops, sessionID)
	}
}

// Rehydrate restarts refresh loops for all live therapist sessions.
// Called once at startup so background refresh survives restarts.
func (s *ProfileService) Rehydrate(ctx context.Context) error {
	sessions, err := s.sessions.LiveTherapistSessions(ctx)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		s.Track(session)
	}

	if len(sessions) > 0 {
		log.Printf("✅ Rehydrated %d therapist refresh loops", len(sessions))
	}
	return nil
}

// Stop tears down every refresh loop and waits for them to exit.
func (s *ProfileService) Stop() {
	s.mu.Lock()
	for id, stop := range s.loops {
		close(stop)
		delete(s.loops, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	log.Println("🛑 Profile refresh loops stopped")
}

// run is one session's refresh loop. It keeps its own copy of the last
// seen profile; a concurrent one-shot fetch writing the same snapshot is
// harmless (last write wins on an idempotent read).
func (s *ProfileService) run(sessionID, bearer string, userID uint, expiresAt time.Time, cached *domain.TherapistProfile, stop chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if time.Now().After(expiresAt) {
				s.expire(sessionID)
				return
			}
			var done bool
			cached, done = s.tick(sessionID, bearer, userID, cached)
			if done {
				return
			}
		case <-stop:
			return
		}
	}
}

// tick fetches the profile once and persists it only when the values
// actually changed. It reports done=true when the session has been
// rejected by the backend and the loop should exit.
func (s *ProfileService) tick(sessionID, bearer string, userID uint, cached *domain.TherapistProfile) (*domain.TherapistProfile, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	profile, found, err := s.upstream.FetchTherapistProfile(ctx, bearer, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			log.Printf("🛑 Session %s rejected by backend, tearing down", sessionID)
			s.Release(sessionID)
			_ = s.sessions.Destroy(ctx, sessionID)
			return cached, true
		}
		log.Printf("⚠️ Profile refresh failed for session %s: %v", sessionID, err)
		return cached, false
	}
	if !found {
		return cached, false
	}

	if profile.Equal(cached) {
		return cached, false
	}

	s.logApprovalTransitions(userID, cached, profile)

	if err := s.sessions.SaveProfile(ctx, sessionID, profile); err != nil {
		log.Printf("⚠️ Failed to persist refreshed profile for session %s: %v", sessionID, err)
		return cached, false
	}
	return profile, false
}

// expire tears down the loop and storage for a session past its
// lifetime.
func (s *ProfileService) expire(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	s.Release(sessionID)
	_ = s.sessions.Destroy(ctx, sessionID)
	log.Printf("🗑️ Expired session %s cleaned up by refresh loop", sessionID)
}

func (s *ProfileService) logApprovalTransitions(userID uint, old, fresh *domain.TherapistProfile) {
	if old == nil {
		return
	}
	if old.AttendanceApproved != fresh.AttendanceApproved {
		log.Printf("📋 Therapist %d attendance approval changed: %v → %v",
			userID, old.AttendanceApproved, fresh.AttendanceApproved)
	}
	if old.TreatmentPlansApproved != fresh.TreatmentPlansApproved {
		log.Printf("📋 Therapist %d treatment-plans approval changed: %v → %v",
			userID, old.TreatmentPlansApproved, fresh.TreatmentPlansApproved)
	}
}
