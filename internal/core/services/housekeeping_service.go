package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// HousekeepingService purges expired session rows on a schedule so the
// store does not accumulate dead sessions across restarts.
type HousekeepingService struct {
	sessions *SessionService
	cron     *cron.Cron
}

// NewHousekeepingService creates a new housekeeping service
func NewHousekeepingService(sessions *SessionService) *HousekeepingService {
	return &HousekeepingService{
		sessions: sessions,
		cron:     cron.New(),
	}
}

// Start schedules the nightly purge (03:00 server time).
func (s *HousekeepingService) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", s.PurgeExpiredSessions); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("🚀 Session housekeeping scheduled (daily 03:00)")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *HousekeepingService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Session housekeeping stopped")
}

// PurgeExpiredSessions removes sessions past their lifetime. Their
// refresh loops notice the expiry themselves on the next tick.
func (s *HousekeepingService) PurgeExpiredSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		log.Printf("❌ Session purge failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("🗑️ Purged %d expired sessions", purged)
	}
}
