package domain

// AuditEntry is one record of the backend's tamper-evident audit trail.
// Each entry's hash covers its own payload plus the previous entry's
// hash, forming a chain the gateway can verify.
type AuditEntry struct {
	ID        uint   `json:"id"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
	Details   string `json:"details,omitempty"`
	PrevHash  string `json:"prev_hash"`
	Hash      string `json:"hash"`
}

// ChainReport is the outcome of verifying an audit-log page.
type ChainReport struct {
	Valid    bool  `json:"valid"`
	Checked  int   `json:"checked"`
	BrokenAt *uint `json:"broken_at,omitempty"`
}
