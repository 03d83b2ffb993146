package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kosar/admin-be/internal/models"
)

// Placeholder shown on the dashboard for accounts without a company name.
const noCompanyPlaceholder = "(no company name)"

// AccountServiceProvider defines the interface for account services.
type AccountServiceProvider interface {
	EnsureForUser(username string) (models.Account, error)
	Create(username string, fields models.AccountFields) (models.Account, error)
	Update(id string, fields models.AccountFields) (models.Account, error)
	FindByID(id string) (models.Account, error)
	FindByNumber(accountNumber string) (models.Account, error)
	ListAll() ([]models.Account, error)
	DashboardCounts() (models.DashboardStats, error)
}

// AccountService provides CRUD over account records.
//
// Two keys are in play and must not be mixed up: account ownership is
// keyed by the creating session's username (the EnsureForUser path),
// while user records reference an account by its id. The manage page
// may additionally select an account to edit by account_number.
type AccountService struct {
	db *sql.DB
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{db: db}
}

const accountColumns = "id, username, account_number, subscription_level, renewal_frequency, company_name, billing_address, created_at"

func scanAccount(row interface{ Scan(...any) error }) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Username, &a.AccountNumber, &a.SubscriptionLevel,
		&a.RenewalFrequency, &a.CompanyName, &a.BillingAddress, &a.CreatedAt)
	return a, err
}

// nullable maps a blank form field to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// EnsureForUser returns the account owned by username, creating it when
// absent and backfilling a missing account number. Calling it again on
// an account that already has a number never changes the number.
func (s *AccountService) EnsureForUser(username string) (models.Account, error) {
	account, err := scanAccount(s.db.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE username = ?", username))
	if err == sql.ErrNoRows {
		return s.Create(username, models.AccountFields{})
	}
	if err != nil {
		return models.Account{}, err
	}

	if account.AccountNumber == "" {
		account.AccountNumber = GenerateAccountNumber()
		if _, err := s.db.Exec("UPDATE accounts SET account_number = ? WHERE id = ?",
			account.AccountNumber, account.ID); err != nil {
			return models.Account{}, err
		}
	}
	return account, nil
}

// Create persists a new account. A blank account number in the
// submission gets a generated one; blank optional fields store as NULL.
func (s *AccountService) Create(username string, fields models.AccountFields) (models.Account, error) {
	number := fields.AccountNumber
	if number == "" {
		number = GenerateAccountNumber()
	}

	account := models.Account{
		ID:                uuid.New().String(),
		Username:          username,
		AccountNumber:     number,
		SubscriptionLevel: nullable(fields.SubscriptionLevel),
		RenewalFrequency:  nullable(fields.RenewalFrequency),
		CompanyName:       nullable(fields.CompanyName),
		BillingAddress:    nullable(fields.BillingAddress),
	}

	stmt, err := s.db.Prepare(`INSERT INTO accounts(id, username, account_number, subscription_level, renewal_frequency, company_name, billing_address)
		VALUES(?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return models.Account{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(account.ID, account.Username, account.AccountNumber,
		account.SubscriptionLevel, account.RenewalFrequency, account.CompanyName,
		account.BillingAddress); err != nil {
		return models.Account{}, err
	}
	return s.FindByID(account.ID)
}

// Update overwrites all mutable fields: a field absent from the
// submission is stored as NULL, not left alone.
func (s *AccountService) Update(id string, fields models.AccountFields) (models.Account, error) {
	stmt, err := s.db.Prepare(`UPDATE accounts
		SET account_number = ?, subscription_level = ?, renewal_frequency = ?, company_name = ?, billing_address = ?
		WHERE id = ?`)
	if err != nil {
		return models.Account{}, err
	}
	defer stmt.Close()

	res, err := stmt.Exec(fields.AccountNumber, nullable(fields.SubscriptionLevel),
		nullable(fields.RenewalFrequency), nullable(fields.CompanyName),
		nullable(fields.BillingAddress), id)
	if err != nil {
		return models.Account{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Account{}, ErrNotFound
	}
	return s.FindByID(id)
}

// FindByID retrieves a single account by its ID.
func (s *AccountService) FindByID(id string) (models.Account, error) {
	account, err := scanAccount(s.db.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("loading account %s: %w", id, err)
	}
	return account, nil
}

// FindByNumber retrieves a single account by its account number.
func (s *AccountService) FindByNumber(accountNumber string) (models.Account, error) {
	account, err := scanAccount(s.db.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE account_number = ?", accountNumber))
	if err == sql.ErrNoRows {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// ListAll returns every account, unordered, no pagination.
func (s *AccountService) ListAll() ([]models.Account, error) {
	rows, err := s.db.Query("SELECT " + accountColumns + " FROM accounts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// DashboardCounts computes the dashboard aggregates in a single grouped
// query rather than one count per account.
func (s *AccountService) DashboardCounts() (models.DashboardStats, error) {
	var stats models.DashboardStats

	if err := s.db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&stats.TotalAccounts); err != nil {
		return models.DashboardStats{}, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&stats.TotalUsers); err != nil {
		return models.DashboardStats{}, err
	}

	rows, err := s.db.Query(`
		SELECT a.id, COALESCE(a.company_name, ?), COUNT(u.id)
		FROM accounts a
		LEFT JOIN users u ON u.account_id = a.id
		GROUP BY a.id`, noCompanyPlaceholder)
	if err != nil {
		return models.DashboardStats{}, err
	}
	defer rows.Close()

	stats.PerAccountUserCounts = []models.AccountUserCount{}
	for rows.Next() {
		var row models.AccountUserCount
		if err := rows.Scan(&row.AccountID, &row.CompanyName, &row.UserCount); err != nil {
			return models.DashboardStats{}, err
		}
		stats.PerAccountUserCounts = append(stats.PerAccountUserCounts, row)
	}
	return stats, rows.Err()
}
