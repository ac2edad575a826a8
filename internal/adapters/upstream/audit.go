package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"physiohub-gateway/internal/core/domain"
)

// AuditPage is one page of audit-log entries from the backend.
type AuditPage struct {
	Entries []domain.AuditEntry `json:"results"`
	Total   int64               `json:"count"`
}

// FetchAuditLogs retrieves one page of the backend's audit trail.
func (c *Client) FetchAuditLogs(ctx context.Context, bearer string, page, limit int) (*AuditPage, error) {
	path := fmt.Sprintf("/audit-logs/?page=%d&limit=%d", page, limit)

	body, err := c.do(ctx, http.MethodGet, path, bearer, nil)
	if err != nil {
		return nil, err
	}

	var result AuditPage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode audit logs: %w", err)
	}
	return &result, nil
}
