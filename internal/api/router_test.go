package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kosar/admin-be/internal/auth"
	"github.com/kosar/admin-be/internal/database"
	"github.com/kosar/admin-be/internal/models"
	"github.com/kosar/admin-be/internal/services"
)

var testSecret = []byte("router-test-secret")

type testEnv struct {
	router *chi.Mux
	db     *sql.DB
	users  *services.UserService
}

func newTestEnv(t *testing.T, autoProvision bool) *testEnv {
	t.Helper()

	db, err := database.New("file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	credentials := services.NewCredentialService(db, autoProvision)
	accounts := services.NewAccountService(db)
	users := services.NewUserService(db)

	router := NewRouter(credentials, accounts, users, testSecret, []string{"*"})
	return &testEnv{router: router, db: db, users: users}
}

func (e *testEnv) get(t *testing.T, path string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authenticated {
		e.addSession(t, req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if authenticated {
		e.addSession(t, req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) addSession(t *testing.T, req *http.Request) {
	t.Helper()
	token, err := auth.GenerateSessionToken("staff", testSecret)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	paths := []string{
		"/logout",
		"/dashboard",
		"/account/add",
		"/account/manage",
		"/account/listing",
		"/account/users",
		"/account/users/new",
		"/account/users/edit/some-id",
		"/account/users/inactivate/some-id",
		"/users/manage",
	}
	for _, path := range paths {
		rec := env.get(t, path, false)
		require.Equal(t, http.StatusSeeOther, rec.Code, path)
		require.Equal(t, "/login", rec.Header().Get("Location"), path)
	}

	// POSTs are gated too, and perform no effect.
	rec := env.postForm(t, "/account/users/confirm", url.Values{}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	users, err := env.users.List()
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestLogin_AutoProvisionFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)

	// First login for an unseen username provisions it and signs in.
	rec := env.postForm(t, "/login", url.Values{"username": {"alice"}, "password": {"pw1"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	require.NotEmpty(t, sessionCookie.Value)

	// Second login with the wrong password fails with no redirect.
	rec = env.postForm(t, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, rec.Header().Get("Location"))
}

func TestLogin_UnknownUserWithProvisioningOff(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	rec := env.postForm(t, "/login", url.Values{"username": {"ghost"}, "password": {"pw"}}, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Nothing was provisioned: the same attempt fails identically.
	rec = env.postForm(t, "/login", url.Values{"username": {"ghost"}, "password": {"pw"}}, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginPage_RendersEvenWhenAuthenticated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	rec := env.get(t, "/login", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "login", decodeBody(t, rec)["page"])
}

func TestDashboard_EnsuresAccountAndCounts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	rec := env.get(t, "/dashboard", true)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	account := body["account"].(map[string]any)
	require.Regexp(t, `^ACCT-[A-Z0-9]{5}$`, account["accountNumber"])

	stats := body["stats"].(map[string]any)
	require.EqualValues(t, 1, stats["totalAccounts"])
	require.EqualValues(t, 0, stats["totalUsers"])

	// A second visit reuses the same account.
	rec = env.get(t, "/dashboard", true)
	body = decodeBody(t, rec)
	stats = body["stats"].(map[string]any)
	require.EqualValues(t, 1, stats["totalAccounts"])
	require.Equal(t, account["accountNumber"], body["account"].(map[string]any)["accountNumber"])
}

func TestAccountManage_UpdatesAndRedirects(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	// First GET creates the session user's account.
	rec := env.get(t, "/account/manage", true)
	require.Equal(t, http.StatusOK, rec.Code)
	number := decodeBody(t, rec)["account"].(map[string]any)["accountNumber"].(string)

	rec = env.postForm(t, "/account/manage", url.Values{
		"account_number":     {number},
		"subscription_level": {"gold"},
		"company_name":       {"Kosar Ltd"},
	}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/dashboard"))

	rec = env.get(t, "/account/manage?account_number="+number, true)
	account := decodeBody(t, rec)["account"].(map[string]any)
	require.Equal(t, "gold", account["subscriptionLevel"])
	require.Equal(t, "Kosar Ltd", account["companyName"])
}

func TestAccountManage_UnknownNumberRedirectsWithNotice(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	rec := env.get(t, "/account/manage?account_number=ACCT-ZZZZZ", true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/account/listing"))
}

func TestUserWorkflow_TwoStepCreate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	// Step 1 with a missing required field re-renders, no record.
	rec := env.postForm(t, "/account/users/new", url.Values{
		"first_name": {"Ada"},
		"email":      {"ada@example.com"},
		"username":   {"ada"},
	}, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	users, err := env.users.List()
	require.NoError(t, err)
	require.Empty(t, users)

	// Step 1 with all fields renders the confirmation with a draft token.
	rec = env.postForm(t, "/account/users/new", url.Values{
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"email":      {"ada@example.com"},
		"username":   {"ada"},
		"password":   {"pw"},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "user_confirm", body["page"])
	token := body["draftToken"].(string)
	require.NotEmpty(t, token)

	// Still nothing persisted before the confirm step.
	users, err = env.users.List()
	require.NoError(t, err)
	require.Empty(t, users)

	// Step 2 commits exactly one Active record.
	rec = env.postForm(t, "/account/users/confirm", url.Values{"draft_token": {token}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/account/users"))

	users, err = env.users.List()
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "Ada", users[0].FirstName)
	require.Equal(t, "Active", users[0].Status)
	require.Nil(t, users[0].InactivateReason)
}

func TestUserWorkflow_ConfirmRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	rec := env.postForm(t, "/account/users/confirm", url.Values{"draft_token": {"forged"}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/account/users"))

	users, err := env.users.List()
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestUserWorkflow_EditKeepsVerifierOnBlankPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	created, err := env.users.CommitCreate(services.UserDraft{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Username: "ada", Password: "pw",
	})
	require.NoError(t, err)

	rec := env.postForm(t, "/account/users/edit/"+created.ID, url.Values{
		"first_name": {"Ada"},
		"last_name":  {"King"},
		"email":      {"ada@example.org"},
		"username":   {"ada"},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["draftToken"].(string)

	rec = env.postForm(t, "/account/users/confirm", url.Values{"draft_token": {token}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	edited, err := env.users.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, "King", edited.LastName)
	require.Equal(t, created.PasswordHash, edited.PasswordHash)
}

func TestUserWorkflow_EditUnknownUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	rec := env.get(t, "/account/users/edit/missing", true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/account/users"))
}

func TestUserWorkflow_Inactivate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	created, err := env.users.CommitCreate(services.UserDraft{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Username: "ada",
	})
	require.NoError(t, err)

	rec := env.postForm(t, "/account/users/inactivate/"+created.ID,
		url.Values{"reason": {"left the company"}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	user, err := env.users.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, "Inactive", user.Status)
	require.Equal(t, "left the company", *user.InactivateReason)
}

func TestUserWorkflow_InactivateUnknownUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	rec := env.get(t, "/account/users/inactivate/missing", true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/account/users"))
}

func TestUserWorkflow_AssociationVariant(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	accounts := services.NewAccountService(env.db)
	account, err := accounts.Create("staff", models.AccountFields{CompanyName: "Kosar Ltd"})
	require.NoError(t, err)

	rec := env.postForm(t, "/account/users/new", url.Values{
		"first_name":     {"Ada"},
		"last_name":      {"Lovelace"},
		"email":          {"ada@example.com"},
		"username":       {"ada"},
		"account_number": {account.AccountNumber},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "Kosar Ltd", body["companyName"])
	token := body["draftToken"].(string)

	rec = env.postForm(t, "/account/users/confirm", url.Values{"draft_token": {token}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	users, err := env.users.List()
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].AccountID)
	require.Equal(t, account.ID, *users[0].AccountID)
}

func TestUserWorkflow_AssociationUnknownAccountRejectedAtStepOne(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	rec := env.postForm(t, "/account/users/new", url.Values{
		"first_name":     {"Ada"},
		"last_name":      {"Lovelace"},
		"email":          {"ada@example.com"},
		"username":       {"ada"},
		"account_number": {"ACCT-NOPE1"},
	}, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	users, err := env.users.List()
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestLogout_ClearsSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)

	rec := env.get(t, "/logout", true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared)
}
