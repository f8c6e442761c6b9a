package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending  ComplaintStatus = "Pending"
	ComplaintStatusViewed   ComplaintStatus = "Viewed"
	ComplaintStatusAssigned ComplaintStatus = "Assigned"
	ComplaintStatusOngoing  ComplaintStatus = "Ongoing"
	ComplaintStatusResolved ComplaintStatus = "Resolved"
)

// Complaint is the aggregate for citizen grievances. Details carries the
// free-form submission fields (description, category, location, attachment)
// verbatim; History is ordered newest-first and only ever grows.
type Complaint struct {
	ID         string
	Email      string
	Status     ComplaintStatus
	EmployeeID *string
	History    []HistoryEntry
	Details    map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
