package domain

import (
	"errors"
	"fmt"
)

// PasswordSentinel is the placeholder stored in the local password column.
// Real credentials live only in Keycloak; the local copy never holds a usable
// password.
const PasswordSentinel = "KEYCLOAK_AUTH"

// Role is the single realm role assigned to a user. One role at a time.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the local record of a Keycloak-backed account. The provider is the
// source of truth for credentials and roles; this record holds display
// attributes and the link to the provider account.
type User struct {
	ID       int64
	Username string
	// Password is transient form input on create/update; persisted only as
	// PasswordSentinel.
	Password   string
	Fullname   string
	Role       Role
	KeycloakID string
}

// Validate validates the user for persistence. Returns an error describing the
// first validation failure. KeycloakID is not checked here; it is assigned by
// the lifecycle workflow, not by callers.
func (u *User) Validate() error {
	if err := validateLength("username", u.Username); err != nil {
		return err
	}
	if err := validateLength("fullname", u.Fullname); err != nil {
		return err
	}
	if !u.Role.Valid() {
		return fmt.Errorf("role must be one of %s or %s", RoleAdmin, RoleUser)
	}
	return nil
}

func validateLength(field, value string) error {
	if value == "" {
		return errors.New(field + " is required")
	}
	if len(value) < 3 || len(value) > 30 {
		return errors.New(field + " must be between 3 and 30 characters long")
	}
	return nil
}
