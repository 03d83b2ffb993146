package services

import "errors"

// Sentinel errors shared across the services. Handlers translate these
// into notices and redirects; nothing in this system is fatal.
var (
	// ErrNotFound means an id or account number resolved to no record.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownUser means no credential exists for the username and
	// auto-provisioning is disabled.
	ErrUnknownUser = errors.New("unknown username")

	// ErrInvalidCredentials means the password did not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
