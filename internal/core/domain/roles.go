package domain

// Role is the closed set of account roles known to the practice backend.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTherapist Role = "therapist"
	RoleDoctor    Role = "doctor"
	RolePatient   Role = "patient"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTherapist, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// Feature identifiers used by the front-end for conditional rendering.
const (
	FeatureDashboard          = "dashboard"
	FeatureEarnings           = "earnings"
	FeatureUserManagement     = "userManagement"
	FeatureTreatmentPlans     = "treatmentPlans"
	FeatureAttendance         = "attendance"
	FeatureAuditLogs          = "auditLogs"
	FeatureLocationMonitoring = "locationMonitoring"
	FeaturePatientRecords     = "patientRecords"
	FeatureAppointments       = "appointments"
)

// featureRoles maps each feature to the roles allowed to use it.
// Unknown features are denied (fail-closed), so a typo in a caller can
// never open access.
var featureRoles = map[string][]Role{
	FeatureDashboard:          {RoleAdmin, RoleTherapist, RoleDoctor, RolePatient},
	FeatureEarnings:           {RoleAdmin, RoleTherapist},
	FeatureUserManagement:     {RoleAdmin},
	FeatureTreatmentPlans:     {RoleAdmin, RoleTherapist, RoleDoctor},
	FeatureAttendance:         {RoleAdmin, RoleTherapist},
	FeatureAuditLogs:          {RoleAdmin},
	FeatureLocationMonitoring: {RoleAdmin},
	FeaturePatientRecords:     {RoleAdmin, RoleTherapist, RoleDoctor},
	FeatureAppointments:       {RoleAdmin, RoleTherapist, RoleDoctor, RolePatient},
}

// approvalGated maps therapist features that additionally require a
// profile approval flag before the feature unlocks.
var approvalGated = map[string]func(p *TherapistProfile) bool{
	FeatureAttendance:     func(p *TherapistProfile) bool { return p.AttendanceApproved },
	FeatureTreatmentPlans: func(p *TherapistProfile) bool { return p.TreatmentPlansApproved },
}

// RoleAllowsFeature reports whether a role may use a feature at all.
func RoleAllowsFeature(role Role, feature string) bool {
	allowed, ok := featureRoles[feature]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// FeatureNeedsApproval reports whether a feature is approval-gated for
// therapists, and returns the flag check when it is.
func FeatureNeedsApproval(feature string) (func(p *TherapistProfile) bool, bool) {
	check, ok := approvalGated[feature]
	return check, ok
}

// Features returns all known feature identifiers.
func Features() []string {
	names := make([]string, 0, len(featureRoles))
	for name := range featureRoles {
		names = append(names, name)
	}
	return names
}

// DashboardRoute returns the post-login route for a role.
func DashboardRoute(role Role) string {
	switch role {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleDoctor:
		return "/doctor/dashboard"
	case RoleTherapist:
		return "/therapist/dashboard"
	case RolePatient:
		return "/patient/dashboard"
	default:
		return "/dashboard"
	}
}

// NavItem is a single menu entry the front-end renders for a role.
type NavItem struct {
	Label   string `json:"label"`
	Path    string `json:"path"`
	Feature string `json:"feature,omitempty"`
}

// navigation is the static role → menu mapping.
var navigation = map[Role][]NavItem{
	RoleAdmin: {
		{Label: "Dashboard", Path: "/admin/dashboard", Feature: FeatureDashboard},
		{Label: "Therapists", Path: "/admin/therapists", Feature: FeatureUserManagement},
		{Label: "Users", Path: "/admin/users", Feature: FeatureUserManagement},
		{Label: "Earnings", Path: "/admin/earnings", Feature: FeatureEarnings},
		{Label: "Audit Logs", Path: "/admin/audit-logs", Feature: FeatureAuditLogs},
		{Label: "Locations", Path: "/admin/locations", Feature: FeatureLocationMonitoring},
	},
	RoleTherapist: {
		{Label: "Dashboard", Path: "/therapist/dashboard", Feature: FeatureDashboard},
		{Label: "Appointments", Path: "/therapist/appointments", Feature: FeatureAppointments},
		{Label: "Treatment Plans", Path: "/therapist/treatment-plans", Feature: FeatureTreatmentPlans},
		{Label: "Attendance", Path: "/therapist/attendance", Feature: FeatureAttendance},
		{Label: "Earnings", Path: "/therapist/earnings", Feature: FeatureEarnings},
	},
	RoleDoctor: {
		{Label: "Dashboard", Path: "/doctor/dashboard", Feature: FeatureDashboard},
		{Label: "Patients", Path: "/doctor/patients", Feature: FeaturePatientRecords},
		{Label: "Treatment Plans", Path: "/doctor/treatment-plans", Feature: FeatureTreatmentPlans},
		{Label: "Appointments", Path: "/doctor/appointments", Feature: FeatureAppointments},
	},
	RolePatient: {
		{Label: "Dashboard", Path: "/patient/dashboard", Feature: FeatureDashboard},
		{Label: "Appointments", Path: "/patient/appointments", Feature: FeatureAppointments},
	},
}

// NavigationFor returns the menu entries for a role. Unknown roles get an
// empty menu rather than an error.
func NavigationFor(role Role) []NavItem {
	items, ok := navigation[role]
	if !ok {
		return []NavItem{}
	}
	out := make([]NavItem, len(items))
	copy(out, items)
	return out
}
