package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kosar/admin-be/internal/auth"
	"github.com/kosar/admin-be/internal/models"
	"github.com/kosar/admin-be/internal/services"
)

// AccountHandler handles the account add/manage/listing pages.
type AccountHandler struct {
	accounts services.AccountServiceProvider
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts services.AccountServiceProvider) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func accountFieldsFrom(r *http.Request) models.AccountFields {
	return models.AccountFields{
		AccountNumber:     r.FormValue("account_number"),
		SubscriptionLevel: r.FormValue("subscription_level"),
		RenewalFrequency:  r.FormValue("renewal_frequency"),
		CompanyName:       r.FormValue("company_name"),
		BillingAddress:    r.FormValue("billing_address"),
	}
}

// ShowAdd renders an empty account form.
func (h *AccountHandler) ShowAdd(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"page":   "account_add",
		"notice": noticeFrom(r),
	})
}

// Add creates an account from the submitted fields. A blank account
// number gets a generated one.
func (h *AccountHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.SessionFromContext(r.Context())

	account, err := h.accounts.Create(claims.Username, accountFieldsFrom(r))
	if err != nil {
		log.Error().Err(err).Str("username", claims.Username).Msg("Failed to create account")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "account_add",
			"error": "Could not create the account",
		})
		return
	}

	log.Info().Str("account_number", account.AccountNumber).Msg("Account created")
	redirectWithNotice(w, r, "/account/listing", "Account created")
}

// resolveManaged picks the account the manage page operates on: an
// explicit ?account_number= selects any account, otherwise the page
// falls back to the signed-in user's own account, creating it on first
// use.
func (h *AccountHandler) resolveManaged(r *http.Request) (models.Account, error) {
	if number := r.URL.Query().Get("account_number"); number != "" {
		return h.accounts.FindByNumber(number)
	}
	claims, _ := auth.SessionFromContext(r.Context())
	return h.accounts.EnsureForUser(claims.Username)
}

// ShowManage renders the manage form pre-filled from the account.
func (h *AccountHandler) ShowManage(w http.ResponseWriter, r *http.Request) {
	account, err := h.resolveManaged(r)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			redirectWithNotice(w, r, "/account/listing", "Account not found")
			return
		}
		log.Error().Err(err).Msg("Failed to load account for manage page")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "account_manage",
			"error": "Could not load the account",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":    "account_manage",
		"account": account,
		"notice":  noticeFrom(r),
	})
}

// Manage overwrites the managed account's fields with the submission.
func (h *AccountHandler) Manage(w http.ResponseWriter, r *http.Request) {
	account, err := h.resolveManaged(r)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			redirectWithNotice(w, r, "/account/listing", "Account not found")
			return
		}
		log.Error().Err(err).Msg("Failed to load account for update")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "account_manage",
			"error": "Could not load the account",
		})
		return
	}

	if _, err := h.accounts.Update(account.ID, accountFieldsFrom(r)); err != nil {
		log.Error().Err(err).Str("account_id", account.ID).Msg("Failed to update account")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "account_manage",
			"error": "Could not save the account",
		})
		return
	}

	redirectWithNotice(w, r, "/dashboard", "Account details updated!")
}

// Listing renders all accounts, unordered.
func (h *AccountHandler) Listing(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list accounts")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "account_listing",
			"error": "Could not load accounts",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":     "account_listing",
		"accounts": accounts,
		"notice":   noticeFrom(r),
	})
}
