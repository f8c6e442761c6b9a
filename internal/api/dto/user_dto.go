package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// UserUpsertRequest is the registration payload. displayName/photoURL mirror
// the field names profile providers send.
type UserUpsertRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Photo        string `json:"photo"`
	PhotoURL     string `json:"photoURL"`
	Role         string `json:"role"`
	Designation  string `json:"designation"`
	Department   string `json:"department"`
	MobileNumber string `json:"mobileNumber"`
	Suspended    bool   `json:"suspended"`
	Password     string `json:"password"`
}

// UserUpsertResponse acknowledges a registration.
type UserUpsertResponse struct {
	Email    string `json:"email"`
	Inserted bool   `json:"inserted"`
}

// UserResponse is the external projection of a user. It carries no credential
// field at all, so the stored hash cannot leak through serialization.
type UserResponse struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Photo        string          `json:"photo"`
	Role         domain.UserRole `json:"role"`
	Designation  string          `json:"designation"`
	Department   string          `json:"department"`
	MobileNumber string          `json:"mobileNumber"`
	Suspended    bool            `json:"suspended"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RoleUpdateRequest is a partial update; absent fields stay untouched.
type RoleUpdateRequest struct {
	Role      *string `json:"role"`
	Suspended *bool   `json:"suspended"`
}

// UpdateAck reports how many records an update matched.
type UpdateAck struct {
	MatchedCount int64 `json:"matchedCount"`
}

// DeleteAck reports how many records a delete removed.
type DeleteAck struct {
	DeletedCount int64 `json:"deletedCount"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
