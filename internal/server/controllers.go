package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/propscale/broker-admin/components/layouts"
	"github.com/propscale/broker-admin/internal/assets"
	"github.com/propscale/broker-admin/pkg/application"
	"github.com/propscale/broker-admin/pkg/httpapi"
)

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func errorPage(app application.Application, title, message string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p>`+templ.EscapeString(message)+`</p>`)
		return err
	})
	return layouts.Base(layouts.BaseProps{
		Title:    title,
		NavItems: app.NavItems(),
	}, body)
}

// NotFound is the fallback handler for unmatched routes.
func NotFound(app application.Application) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			_ = httpapi.WriteFailure(w, http.StatusNotFound, "Not found")
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_ = errorPage(app, "Page Not Found", "The page you are looking for does not exist.").Render(r.Context(), w)
	})
}

// MethodNotAllowed is the fallback handler for matched routes with the wrong verb.
func MethodNotAllowed(app application.Application) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			_ = httpapi.WriteFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = errorPage(app, "Method Not Allowed", "That action is not supported on this page.").Render(r.Context(), w)
	})
}

type StaticFilesController struct {
	prefix string
}

func NewStaticFilesController() application.Controller {
	return &StaticFilesController{prefix: "/assets/"}
}

func (c *StaticFilesController) Key() string {
	return c.prefix
}

func (c *StaticFilesController) Register(r *mux.Router) {
	fileServer := http.StripPrefix(c.prefix, http.FileServer(http.FS(assets.FS)))
	r.PathPrefix(c.prefix).Handler(fileServer).Methods(http.MethodGet)
}

type HealthController struct {
	path string
}

func NewHealthController() application.Controller {
	return &HealthController{path: "/health"}
}

func (c *HealthController) Key() string {
	return c.path
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(c.path, func(w http.ResponseWriter, _ *http.Request) {
		_ = httpapi.WriteSuccess(w, map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)
}
