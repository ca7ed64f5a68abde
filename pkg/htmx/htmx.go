// Package htmx contains helpers for responding to HTMX-initiated requests.
package htmx

import "net/http"

func IsHxRequest(r *http.Request) bool {
	return r.Header.Get("Hx-Request") == "true"
}

// Redirect instructs an HTMX client to perform a full-page redirect.
func Redirect(w http.ResponseWriter, path string) {
	w.Header().Set("Hx-Redirect", path)
}

// Refresh instructs an HTMX client to reload the current page. Used after
// mutations so the view always reflects server truth instead of a locally
// patched state.
func Refresh(w http.ResponseWriter) {
	w.Header().Set("Hx-Refresh", "true")
}

// Retarget overrides the target element for the response fragment.
func Retarget(w http.ResponseWriter, selector string) {
	w.Header().Set("Hx-Retarget", selector)
}

// PushURL pushes a new URL into the browser history without a full reload.
func PushURL(w http.ResponseWriter, u string) {
	w.Header().Set("Hx-Push-Url", u)
}
