package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"physiohub-gateway/internal/adapters/upstream"
	"physiohub-gateway/internal/core/domain"
)

// AuditService proxies the backend's audit trail and verifies its hash
// chain so the viewer can flag tampering.
type AuditService struct {
	upstream UpstreamClient
}

// NewAuditService creates a new audit service
func NewAuditService(upstream UpstreamClient) *AuditService {
	return &AuditService{upstream: upstream}
}

// AuditResult is one verified page of the audit trail.
type AuditResult struct {
	Entries   []domain.AuditEntry `json:"entries"`
	Total     int64               `json:"total"`
	Integrity domain.ChainReport  `json:"integrity"`
}

// List fetches one page of audit entries and verifies the chain.
func (s *AuditService) List(ctx context.Context, session *domain.Session, page, limit int) (*AuditResult, error) {
	result, err := s.upstream.FetchAuditLogs(ctx, session.AccessToken, page, limit)
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			return nil, domain.ErrSessionInvalid
		}
		return nil, err
	}

	return &AuditResult{
		Entries:   result.Entries,
		Total:     result.Total,
		Integrity: VerifyChain(result.Entries),
	}, nil
}

// EntryHash computes the tamper-evident hash of one audit entry: the
// previous entry's hash concatenated with the entry payload.
func EntryHash(entry *domain.AuditEntry) string {
	payload := fmt.Sprintf("%s|%d|%s|%s|%s|%s",
		entry.PrevHash, entry.ID, entry.Actor, entry.Action, entry.Timestamp, entry.Details)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VerifyChain recomputes each entry's hash and checks the linkage to its
// predecessor, reporting the first broken entry.
func VerifyChain(entries []domain.AuditEntry) domain.ChainReport {
	report := domain.ChainReport{Valid: true, Checked: len(entries)}

	for i := range entries {
		entry := &entries[i]

		if i > 0 && entry.PrevHash != entries[i-1].Hash {
			id := entry.ID
			report.Valid = false
			report.BrokenAt = &id
			return report
		}

		if EntryHash(entry) != entry.Hash {
			id := entry.ID
			report.Valid = false
			report.BrokenAt = &id
			return report
		}
	}

	return report
}
