package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kosar/admin-be/internal/models"
)

// Default reason stored when an inactivation form is submitted blank.
const defaultInactivateReason = "No reason provided"

// UserDraft is the validated field set committed at the end of the
// two-step create/edit workflow. Password and AccountID are optional;
// an empty password on edit means "leave the verifier unchanged".
type UserDraft struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
	AccountID string
}

// UserServiceProvider defines the interface for user record services.
type UserServiceProvider interface {
	Get(id string) (models.User, error)
	List() ([]models.User, error)
	CommitCreate(draft UserDraft) (models.User, error)
	CommitEdit(id string, draft UserDraft) (models.User, error)
	Inactivate(id, reason string) (models.User, error)
}

// UserService provides business logic for user record management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, first_name, last_name, email, username, status, inactivate_reason, account_id, COALESCE(password_hash, ''), created_at"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Username,
		&u.Status, &u.InactivateReason, &u.AccountID, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Get retrieves a single user record by its ID.
func (s *UserService) Get(id string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("loading user %s: %w", id, err)
	}
	return user, nil
}

// List returns every user record regardless of status, unordered.
func (s *UserService) List() ([]models.User, error) {
	rows, err := s.db.Query("SELECT " + userColumns + " FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CommitCreate inserts a new Active user from a confirmed draft. A
// verifier is stored only when the draft carries a password; a user
// without one cannot authenticate.
func (s *UserService) CommitCreate(draft UserDraft) (models.User, error) {
	user := models.User{
		ID:        uuid.New().String(),
		FirstName: draft.FirstName,
		LastName:  draft.LastName,
		Email:     draft.Email,
		Username:  draft.Username,
		Status:    models.StatusActive,
		AccountID: nullable(draft.AccountID),
	}

	var passwordHash *string
	if draft.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hashed)
		passwordHash = &h
	}

	stmt, err := s.db.Prepare(`INSERT INTO users(id, first_name, last_name, email, username, status, account_id, password_hash)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.FirstName, user.LastName, user.Email,
		user.Username, user.Status, user.AccountID, passwordHash); err != nil {
		return models.User{}, err
	}
	return s.Get(user.ID)
}

// CommitEdit overwrites the mutable fields of an existing user from a
// confirmed draft. The verifier is replaced only when the draft carries
// a non-empty password.
func (s *UserService) CommitEdit(id string, draft UserDraft) (models.User, error) {
	if _, err := s.Get(id); err != nil {
		return models.User{}, err
	}

	stmt, err := s.db.Prepare(`UPDATE users
		SET first_name = ?, last_name = ?, email = ?, username = ?, account_id = ?
		WHERE id = ?`)
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(draft.FirstName, draft.LastName, draft.Email,
		draft.Username, nullable(draft.AccountID), id); err != nil {
		return models.User{}, err
	}

	if draft.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		if _, err = s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hashed), id); err != nil {
			return models.User{}, err
		}
	}
	return s.Get(id)
}

// Inactivate sets a user's status to Inactive and records the reason.
// This is the only status-changing operation; there is no reactivation
// action in the workflow.
func (s *UserService) Inactivate(id, reason string) (models.User, error) {
	if reason == "" {
		reason = defaultInactivateReason
	}

	res, err := s.db.Exec("UPDATE users SET status = ?, inactivate_reason = ? WHERE id = ?",
		models.StatusInactive, reason, id)
	if err != nil {
		return models.User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.User{}, ErrNotFound
	}
	return s.Get(id)
}
