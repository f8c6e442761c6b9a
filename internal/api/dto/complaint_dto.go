package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// TransitionRequest asks for a status change on a complaint.
type TransitionRequest struct {
	Status     string               `json:"status"`
	EmployeeID *string              `json:"employeeId"`
	History    *HistoryPatchRequest `json:"history"`
}

// HistoryPatchRequest carries the optional fields of one history entry.
type HistoryPatchRequest struct {
	File        *string `json:"file"`
	Description *string `json:"description"`
	Comment     *string `json:"comment"`
	Location    *string `json:"location"`
}

// HistoryEntryResponse mirrors a stored history entry.
type HistoryEntryResponse struct {
	Timestamp   time.Time `json:"timestamp"`
	File        *string   `json:"file,omitempty"`
	Description *string   `json:"description,omitempty"`
	Comment     *string   `json:"comment,omitempty"`
	Location    *string   `json:"location,omitempty"`
}

// ComplaintResponse is the external shape of a complaint.
type ComplaintResponse struct {
	ID         string                 `json:"id"`
	Email      string                 `json:"email"`
	Status     domain.ComplaintStatus `json:"status"`
	EmployeeID *string                `json:"employeeId"`
	History    []HistoryEntryResponse `json:"history"`
	Details    map[string]any         `json:"details"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// CategoryResponse is the reference-data shape.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
