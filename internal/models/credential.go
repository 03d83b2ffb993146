package models

import "time"

// Credential is a login identity: a username paired with a one-way
// password verifier. Usernames are matched case-sensitively and
// credentials are never deleted.
type Credential struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}
