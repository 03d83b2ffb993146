package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// The backend renders no HTML: GET pages answer with the data a
// template layer would consume, and successful form posts answer with
// redirects. Notices ride the redirect as a query parameter and are
// echoed back by the target page.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	if notice != "" {
		path = path + "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func noticeFrom(r *http.Request) string {
	return r.URL.Query().Get("notice")
}
