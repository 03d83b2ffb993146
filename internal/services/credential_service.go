package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/kosar/admin-be/internal/models"
)

// CredentialServiceProvider defines the interface for login credential services.
type CredentialServiceProvider interface {
	FindByUsername(username string) (models.Credential, error)
	Create(username, password string) (models.Credential, error)
	Verify(cred models.Credential, password string) bool
	Authenticate(username, password string) (models.Credential, error)
}

// CredentialService stores and checks username/verifier pairs.
//
// When autoProvision is enabled, a login attempt with a never-seen
// username silently creates the credential from the submitted password
// and then succeeds. This mirrors the historical behavior of the app;
// it is a development convenience and must stay off in production.
type CredentialService struct {
	db            *sql.DB
	autoProvision bool
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(db *sql.DB, autoProvision bool) *CredentialService {
	return &CredentialService{db: db, autoProvision: autoProvision}
}

// FindByUsername retrieves a credential by exact (case-sensitive) username.
func (s *CredentialService) FindByUsername(username string) (models.Credential, error) {
	var cred models.Credential
	row := s.db.QueryRow("SELECT id, username, password_hash, created_at FROM credentials WHERE username = ?", username)
	err := row.Scan(&cred.ID, &cred.Username, &cred.PasswordHash, &cred.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Credential{}, ErrNotFound
		}
		return models.Credential{}, err
	}
	return cred, nil
}

// Create hashes the password and persists a new credential. There is no
// duplicate-username check; the login lookup returns the oldest match.
func (s *CredentialService) Create(username, password string) (models.Credential, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Credential{}, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := models.Credential{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	stmt, err := s.db.Prepare("INSERT INTO credentials(id, username, password_hash) VALUES(?, ?, ?)")
	if err != nil {
		return models.Credential{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(cred.ID, cred.Username, cred.PasswordHash); err != nil {
		return models.Credential{}, err
	}
	return cred, nil
}

// Verify reports whether the password matches the stored verifier.
func (s *CredentialService) Verify(cred models.Credential, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) == nil
}

// Authenticate runs the full login check: look up the username,
// auto-provision it when allowed, then verify the password.
func (s *CredentialService) Authenticate(username, password string) (models.Credential, error) {
	cred, err := s.FindByUsername(username)
	if err == ErrNotFound {
		if !s.autoProvision {
			return models.Credential{}, ErrUnknownUser
		}
		cred, err = s.Create(username, password)
		if err != nil {
			return models.Credential{}, err
		}
		log.Warn().Str("username", username).Msg("Auto-provisioned login credential")
	} else if err != nil {
		return models.Credential{}, err
	}

	if !s.Verify(cred, password) {
		return models.Credential{}, ErrInvalidCredentials
	}
	return cred, nil
}
