package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"physiohub-gateway/internal/core/domain"
)

// profileStrategy is one way of getting the therapist profile. The
// backend has grown several profile endpoints across versions; the
// gateway tries them in order and takes the first that answers.
type profileStrategy struct {
	name string
	path func(userID uint) string
}

func profileStrategies() []profileStrategy {
	return []profileStrategy{
		{
			name: "my-profile",
			path: func(uint) string { return "/users/therapists/profile/" },
		},
		{
			name: "therapist-by-id",
			path: func(userID uint) string { return fmt.Sprintf("/users/therapists/%d/", userID) },
		},
		{
			name: "legacy-profile",
			path: func(userID uint) string { return fmt.Sprintf("/users/therapist-profile/%d/", userID) },
		},
		{
			name: "status-summary",
			path: func(uint) string { return "/users/therapist-status/" },
		},
	}
}

// FetchTherapistProfile runs the profile fallback chain. The boolean
// reports whether any strategy produced a profile; exhaustion of the
// chain is not an error (the user stays authenticated without a role
// profile). A 401 from any strategy aborts the chain and reports the
// session as invalid.
func (c *Client) FetchTherapistProfile(ctx context.Context, bearer string, userID uint) (*domain.TherapistProfile, bool, error) {
	for _, strategy := range profileStrategies() {
		body, err := c.do(ctx, http.MethodGet, strategy.path(userID), bearer, nil)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
				return nil, false, domain.ErrSessionInvalid
			}
			continue
		}

		var profile domain.TherapistProfile
		if err := json.Unmarshal(body, &profile); err != nil {
			continue
		}
		if profile.UserID == 0 {
			profile.UserID = userID
		}
		return &profile, true, nil
	}

	log.Printf("⚠️ No therapist profile available for user %d (all endpoints exhausted)", userID)
	return nil, false, nil
}
