package services

import (
	"physiohub-gateway/internal/core/domain"
)

// Decision is the outcome of a feature-gate evaluation.
type Decision int

const (
	// DecisionPending means the gate cannot settle yet: the feature is
	// approval-gated and the role profile has not been fetched.
	DecisionPending Decision = iota
	DecisionAllowed
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionAllowed:
		return "allowed"
	case DecisionDenied:
		return "denied"
	default:
		return "pending"
	}
}

// AccessService answers role and feature questions about the current
// user. Every method is a pure read over the user snapshot: safe to call
// on every request, never mutating state, and answering false rather
// than failing when no user is present.
type AccessService struct{}

// NewAccessService creates a new access service
func NewAccessService() *AccessService {
	return &AccessService{}
}

// HasRole checks an exact role match.
func (s *AccessService) HasRole(user *domain.User, role domain.Role) bool {
	return user != nil && user.Role == role
}

// HasAnyRole checks membership in a set of roles.
func (s *AccessService) HasAnyRole(user *domain.User, roles ...domain.Role) bool {
	if user == nil {
		return false
	}
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}

// CanAccessFeature checks the static feature table. Unknown features are
// denied.
func (s *AccessService) CanAccessFeature(user *domain.User, feature string) bool {
	return user != nil && domain.RoleAllowsFeature(user.Role, feature)
}

// FeatureMap returns the full feature → allowed map for a user, used by
// the front-end to gate rendering in one round-trip.
func (s *AccessService) FeatureMap(user *domain.User) map[string]bool {
	features := map[string]bool{}
	for _, name := range domain.Features() {
		features[name] = s.CanAccessFeature(user, name)
	}
	return features
}

// Navigation returns the menu entries for the user's role.
func (s *AccessService) Navigation(user *domain.User) []domain.NavItem {
	if user == nil {
		return []domain.NavItem{}
	}
	return domain.NavigationFor(user.Role)
}

// Decide evaluates the feature gate for a session. Denied is final;
// Pending means an approval-gated feature still needs the role profile,
// and the caller must resolve the fetch before the protected content can
// be reached.
func (s *AccessService) Decide(session *domain.Session, feature string) Decision {
	if session == nil || session.User == nil {
		return DecisionDenied
	}
	if !s.CanAccessFeature(session.User, feature) {
		return DecisionDenied
	}

	check, gated := domain.FeatureNeedsApproval(feature)
	if gated && session.User.Role == domain.RoleTherapist {
		if session.Profile == nil {
			return DecisionPending
		}
		if !check(session.Profile) {
			return DecisionDenied
		}
	}

	return DecisionAllowed
}
