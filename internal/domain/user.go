package domain

import "time"

// UserRole is the authorization role stored on a profile.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleStaff UserRole = "staff"
	UserRoleAdmin UserRole = "admin"
)

// UserProfile mirrors the identity provider's user record.
type UserProfile struct {
	ID        string
	Email     string
	Name      string
	Phone     string
	Address   string
	Role      UserRole
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
