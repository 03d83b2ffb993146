package models

import "time"

// User status values. Inactivation is the only status transition the
// workflow exposes; the enum stays two-valued so a reactivation path
// can be added later without a schema change.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// User represents a person record managed through the admin screens.
// A user may be linked to an Account and may carry a password verifier;
// a user without one cannot authenticate.
type User struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	Status           string    `json:"status"`
	InactivateReason *string   `json:"inactivateReason,omitempty"`
	AccountID        *string   `json:"accountId,omitempty"`
	PasswordHash     string    `json:"-"` // Never expose this to the client
	CreatedAt        time.Time `json:"createdAt"`
}
