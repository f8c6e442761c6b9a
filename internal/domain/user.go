package domain

import "time"

// UserRole classifies what a user can do in the system. Roles are open-ended
// strings; these are the ones the service assigns meaning to.
type UserRole string

const (
	RoleCitizen  UserRole = "citizen"
	RoleAdmin    UserRole = "admin"
	RoleEmployee UserRole = "employee"
)

// DefaultPhoto is used when registration supplies no photo.
const DefaultPhoto = "https://via.placeholder.com/150"

// User is the directory record for anyone interacting with the service.
// Exactly one record exists per canonical (lowercased) email.
type User struct {
	ID           string
	Email        string
	Name         string
	Photo        string
	Role         UserRole
	Designation  string
	Department   string
	MobileNumber string
	Suspended    bool
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
