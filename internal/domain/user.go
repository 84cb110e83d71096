package domain

import "time"

// Role controls which commands a principal may execute.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is a registered identity. Email is unique across live users.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        string
	Active       bool
	CreatedAt    time.Time
}

// ProfilePatch carries the optional fields of a profile update. Nil fields
// are left untouched.
type ProfilePatch struct {
	Name  *string
	Email *string
	Phone *string
}
