package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"physiohub-gateway/internal/core/domain"
)

// CredentialField is the payload key the token endpoint expects for the
// identifier the user typed.
type CredentialField string

const (
	FieldEmail    CredentialField = "email"
	FieldPhone    CredentialField = "phone"
	FieldUsername CredentialField = "username"
)

// ClassifyIdentifier decides which credential field an identifier belongs
// to: anything containing "@" is an email, an all-digit string is a phone
// number, everything else is a username.
func ClassifyIdentifier(identifier string) CredentialField {
	if strings.Contains(identifier, "@") {
		return FieldEmail
	}
	if identifier != "" && isAllDigits(identifier) {
		return FieldPhone
	}
	return FieldUsername
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StatusError is a non-2xx answer from the practice backend. The raw body
// is kept so callers can extract field-level validation messages.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Code)
}

// Detail extracts the backend's own error description from the body,
// preferring the explicit error field over the detail field.
func (e *StatusError) Detail() string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Detail
}

// FieldMessage returns the first field-level validation message in
// priority order: error, detail, then the per-field arrays for username,
// password, email and phone.
func (e *StatusError) FieldMessage() string {
	var payload struct {
		Error    string   `json:"error"`
		Detail   string   `json:"detail"`
		Username []string `json:"username"`
		Password []string `json:"password"`
		Email    []string `json:"email"`
		Phone    []string `json:"phone"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	for _, fields := range [][]string{payload.Username, payload.Password, payload.Email, payload.Phone} {
		if len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// Client talks to the practice REST backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an upstream client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// TokenResult is the token endpoint's answer.
type TokenResult struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    domain.User `json:"user"`
}

// IssueToken exchanges credentials for a token pair and user record.
// The payload carries a single identifier field chosen by the caller.
func (c *Client) IssueToken(ctx context.Context, field CredentialField, identifier, password string) (*TokenResult, error) {
	payload := map[string]string{
		string(field): identifier,
		"password":    password,
	}

	body, err := c.do(ctx, http.MethodPost, "/auth/token/", "", payload)
	if err != nil {
		return nil, err
	}

	var result TokenResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &result, nil
}

// RevokeToken invalidates a refresh token server-side.
func (c *Client) RevokeToken(ctx context.Context, refreshToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout/", "", map[string]string{
		"refresh": refreshToken,
	})
	return err
}

// Register forwards a registration payload untouched and returns the
// backend's answer untouched.
func (c *Client) Register(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/register/", "", payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ResetPassword requests a password reset for an email address.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"email": email,
	})
	return err
}

// UpdateProfile updates the authenticated user's identity record and
// returns the refreshed record.
func (c *Client) UpdateProfile(ctx context.Context, bearer string, payload json.RawMessage) (*domain.User, error) {
	body, err := c.do(ctx, http.MethodPut, "/auth/profile", bearer, payload)
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode updated profile: %w", err)
	}
	return &user, nil
}

// do executes one request. A non-2xx answer becomes a *StatusError with
// the raw body attached; transport failures come back as-is.
func (c *Client) do(ctx context.Context, method, path, bearer string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: body}
	}

	return body, nil
}
