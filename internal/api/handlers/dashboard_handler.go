package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kosar/admin-be/internal/auth"
	"github.com/kosar/admin-be/internal/services"
)

// DashboardHandler renders the aggregate counts page.
type DashboardHandler struct {
	accounts services.AccountServiceProvider
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(accounts services.AccountServiceProvider) *DashboardHandler {
	return &DashboardHandler{accounts: accounts}
}

// Show renders the dashboard. A first visit also makes sure the
// signed-in user's own account record exists and has a number.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	account, err := h.accounts.EnsureForUser(claims.Username)
	if err != nil {
		log.Error().Err(err).Str("username", claims.Username).Msg("Failed to ensure account for user")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "dashboard",
			"error": "Could not load your account",
		})
		return
	}

	stats, err := h.accounts.DashboardCounts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute dashboard counts")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "dashboard",
			"error": "Could not load dashboard counts",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":     "dashboard",
		"username": claims.Username,
		"account":  account,
		"stats":    stats,
		"notice":   noticeFrom(r),
	})
}
