// Package systems manages the tenant-scoped registry of in-scope IT systems
// tracked for compliance.
package systems

import "time"

// Status is a system's compliance posture.
type Status string

const (
	StatusCompliant     Status = "compliant"
	StatusAtRisk        Status = "at_risk"
	StatusNonCompliant  Status = "non_compliant"
	StatusPendingReview Status = "pending_review"
)

var validStatuses = map[Status]struct{}{
	StatusCompliant:     {},
	StatusAtRisk:        {},
	StatusNonCompliant:  {},
	StatusPendingReview: {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

// System is one registered system. Rows are soft deleted: DeletedAt marks a
// system archived while dependent findings and audit history stay intact.
type System struct {
	ID          string     `json:"id"`
	OrgID       string     `json:"organizationId"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Criticality string     `json:"criticality"`
	Status      Status     `json:"status"`
	Owner       string     `json:"owner,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"-"`
}

// ListFilter narrows a systems listing.
type ListFilter struct {
	Status   string
	Category string
	Cursor   string
	Limit    int
}
