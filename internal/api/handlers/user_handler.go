package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/kosar/admin-be/internal/auth"
	"github.com/kosar/admin-be/internal/services"
)

// UserHandler handles the user listing and the two-step
// create/edit/confirm workflow, plus inactivation.
type UserHandler struct {
	users     services.UserServiceProvider
	accounts  services.AccountServiceProvider
	jwtSecret []byte
	validate  *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServiceProvider, accounts services.AccountServiceProvider, jwtSecret []byte) *UserHandler {
	return &UserHandler{
		users:     users,
		accounts:  accounts,
		jwtSecret: jwtSecret,
		validate:  validator.New(),
	}
}

// userForm is a step 1 submission. All four identity fields are
// required; password and account number are optional.
type userForm struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Username      string `json:"username" validate:"required"`
	Password      string `json:"-"`
	AccountNumber string `json:"accountNumber"`
}

func userFormFrom(r *http.Request) userForm {
	return userForm{
		FirstName:     r.FormValue("first_name"),
		LastName:      r.FormValue("last_name"),
		Email:         r.FormValue("email"),
		Username:      r.FormValue("username"),
		Password:      r.FormValue("password"),
		AccountNumber: r.FormValue("account_number"),
	}
}

// List renders every user record regardless of status.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "user_list",
			"error": "Could not load users",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":   "user_list",
		"users":  users,
		"notice": noticeFrom(r),
	})
}

// ShowNew renders an empty user form (step 1, create).
func (h *UserHandler) ShowNew(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"page":   "user_form",
		"mode":   auth.DraftModeCreate,
		"notice": noticeFrom(r),
	})
}

// ShowEdit renders the user form pre-filled from the stored record
// (step 1, edit). The password field always starts blank.
func (h *UserHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.users.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			redirectWithNotice(w, r, "/account/users", "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to load user for edit")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "user_form",
			"error": "Could not load the user",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":   "user_form",
		"mode":   auth.DraftModeEdit,
		"user":   user,
		"notice": noticeFrom(r),
	})
}

// SubmitNew validates a create draft and renders the confirmation step.
func (h *UserHandler) SubmitNew(w http.ResponseWriter, r *http.Request) {
	h.submitStepOne(w, r, auth.DraftModeCreate, "")
}

// SubmitEdit validates an edit draft and renders the confirmation step.
func (h *UserHandler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.users.Get(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			redirectWithNotice(w, r, "/account/users", "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to load user for edit")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "user_form",
			"error": "Could not load the user",
		})
		return
	}
	h.submitStepOne(w, r, auth.DraftModeEdit, id)
}

// submitStepOne is the shared step 1 POST: validate the fields, resolve
// the optional account association, and hand the draft forward as a
// signed token. A failed validation re-renders the same step and
// nothing is written.
func (h *UserHandler) submitStepOne(w http.ResponseWriter, r *http.Request, mode, userID string) {
	form := userFormFrom(r)

	if err := h.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		missing := []string{}
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				missing = append(missing, fe.Field())
			}
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"page":   "user_form",
			"mode":   mode,
			"userId": userID,
			"form":   form,
			"error":  "Required fields are missing or invalid: " + strings.Join(missing, ", "),
		})
		return
	}

	// The association is submitted as an account number and stored as
	// the account's id; the company name is looked up for display only.
	var accountID, companyName string
	if form.AccountNumber != "" {
		account, err := h.accounts.FindByNumber(form.AccountNumber)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
					"page":  "user_form",
					"mode":  mode,
					"form":  form,
					"error": "No account matches number " + form.AccountNumber,
				})
				return
			}
			log.Error().Err(err).Str("account_number", form.AccountNumber).Msg("Failed to resolve account association")
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"page":  "user_form",
				"error": "Could not resolve the account",
			})
			return
		}
		accountID = account.ID
		if account.CompanyName != nil {
			companyName = *account.CompanyName
		}
	}

	token, err := auth.SignDraft(auth.DraftClaims{
		Mode:      mode,
		UserID:    userID,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Username:  form.Username,
		Password:  form.Password,
		AccountID: accountID,
	}, h.jwtSecret)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign draft token")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "user_form",
			"error": "Could not prepare the confirmation step",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":        "user_confirm",
		"mode":        mode,
		"userId":      userID,
		"form":        form,
		"companyName": companyName,
		"draftToken":  token,
	})
}

// Confirm is step 2: verify the draft token and commit. The token is
// the only accepted input; resubmitted raw fields are ignored.
func (h *UserHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ParseDraft(r.FormValue("draft_token"), h.jwtSecret)
	if err != nil {
		redirectWithNotice(w, r, "/account/users", "The confirmation expired or was altered; nothing was saved")
		return
	}

	draft := services.UserDraft{
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Email:     claims.Email,
		Username:  claims.Username,
		Password:  claims.Password,
		AccountID: claims.AccountID,
	}

	switch {
	case claims.Mode == auth.DraftModeCreate:
		if _, err := h.users.CommitCreate(draft); err != nil {
			log.Error().Err(err).Msg("Failed to create user")
			redirectWithNotice(w, r, "/account/users", "Could not save the user")
			return
		}
		redirectWithNotice(w, r, "/account/users", "User created")

	case claims.Mode == auth.DraftModeEdit && claims.UserID != "":
		if _, err := h.users.CommitEdit(claims.UserID, draft); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				redirectWithNotice(w, r, "/account/users", "User not found")
				return
			}
			log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to update user")
			redirectWithNotice(w, r, "/account/users", "Could not save the user")
			return
		}
		redirectWithNotice(w, r, "/account/users", "User updated")

	default:
		redirectWithNotice(w, r, "/account/users", "The submission could not be matched to a workflow; nothing was saved")
	}
}

// ShowInactivate renders the reason-capture form for a user.
func (h *UserHandler) ShowInactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.users.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			redirectWithNotice(w, r, "/account/users", "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to load user for inactivation")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "user_inactivate",
			"error": "Could not load the user",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":   "user_inactivate",
		"user":   user,
		"notice": noticeFrom(r),
	})
}

// Inactivate sets the user's status to Inactive with the submitted
// reason, falling back to a placeholder when blank.
func (h *UserHandler) Inactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.users.Inactivate(id, r.FormValue("reason")); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			redirectWithNotice(w, r, "/account/users", "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to inactivate user")
		redirectWithNotice(w, r, "/account/users", "Could not inactivate the user")
		return
	}
	redirectWithNotice(w, r, "/account/users", "User inactivated")
}
