package services

import (
	"context"
	"encoding/json"

	"physiohub-gateway/internal/adapters/upstream"
	"physiohub-gateway/internal/core/domain"
)

// UpstreamClient is the practice backend API surface the services need.
// Implemented by *upstream.Client; tests substitute fakes.
type UpstreamClient interface {
	IssueToken(ctx context.Context, field upstream.CredentialField, identifier, password string) (*upstream.TokenResult, error)
	RevokeToken(ctx context.Context, refreshToken string) error
	Register(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	ResetPassword(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, bearer string, payload json.RawMessage) (*domain.User, error)
	FetchTherapistProfile(ctx context.Context, bearer string, userID uint) (*domain.TherapistProfile, bool, error)
	FetchAuditLogs(ctx context.Context, bearer string, page, limit int) (*upstream.AuditPage, error)
}
