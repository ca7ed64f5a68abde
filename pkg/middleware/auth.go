package middleware

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/configuration"
	"github.com/propscale/broker-admin/pkg/htmx"
)

// Authorize lifts the platform bearer token out of its cookie into the
// request context. It never rejects: pages that require auth enforce it via
// RequireAuth, and the platform itself is the final authority on token
// validity.
func Authorize() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(conf.TokenCookieKey)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithToken(r.Context(), cookie.Value)))
		})
	}
}

// RequireAuth redirects token-less requests to the login page, carrying the
// original URL so the user lands back where they started. The redirect can be
// disabled for environments that front the app with their own auth proxy.
func RequireAuth() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !conf.AuthRedirectEnabled || composables.UseAuthenticated(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			target := conf.LoginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
			if htmx.IsHxRequest(r) {
				htmx.Redirect(w, target)
				return
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
		})
	}
}
