package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/propscale/broker-admin/components/layouts"
	"github.com/propscale/broker-admin/modules/challenges/services"
	"github.com/propscale/broker-admin/pkg/application"
	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/configuration"
	"github.com/propscale/broker-admin/pkg/constants"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/htmx"
	"github.com/propscale/broker-admin/pkg/middleware"
	"github.com/propscale/broker-admin/pkg/shared"
)

type ChallengesController struct {
	app      application.Application
	service  *services.ChallengesService
	basePath string
}

func NewChallengesController(app application.Application) application.Controller {
	return &ChallengesController{
		app:      app,
		service:  app.Service(services.ChallengesService{}).(*services.ChallengesService),
		basePath: "/challenges",
	}
}

func (c *ChallengesController) Key() string {
	return c.basePath
}

func (c *ChallengesController) Register(r *mux.Router) {
	commonMiddleware := []mux.MiddlewareFunc{
		middleware.Authorize(),
		middleware.RequestParams(),
		middleware.RequireAuth(),
	}

	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(commonMiddleware...)

	router.HandleFunc("/{brokerID:[0-9]+}", c.Matrix).Methods(http.MethodGet)
	router.HandleFunc("/{brokerID:[0-9]+}/tabs/{tabType}/move", c.Move).Methods(http.MethodPost)
	router.HandleFunc("/{tabType}/{brokerID:[0-9]+}/clone", c.Clone).Methods(http.MethodPost)
}

// Matrix renders the three-level editor: category tabs, then the steps of
// the selected category, then the amount tabs. Each page load syncs the
// strips with server truth so edits made elsewhere show up.
func (c *ChallengesController) Matrix(w http.ResponseWriter, r *http.Request) {
	brokerID := mux.Vars(r)["brokerID"]
	categoryID := r.URL.Query().Get("broker_challenge_category_id")

	categories, err := c.service.Refresh(r.Context(), brokerID, services.TabCategory, "")
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	// The first category is selected by default.
	if categoryID == "" && len(categories) > 0 {
		categoryID = strconv.FormatInt(categories[0].ID, 10)
	}

	strips := []tabStripProps{
		{BrokerID: brokerID, TabType: services.TabCategory, Tabs: categories},
	}
	if categoryID != "" {
		steps, err := c.service.Refresh(r.Context(), brokerID, services.TabStep, categoryID)
		if err != nil {
			c.renderError(w, r, err)
			return
		}
		amounts, err := c.service.Refresh(r.Context(), brokerID, services.TabAmount, categoryID)
		if err != nil {
			c.renderError(w, r, err)
			return
		}
		strips = append(strips,
			tabStripProps{BrokerID: brokerID, TabType: services.TabStep, CategoryID: categoryID, Tabs: steps},
			tabStripProps{BrokerID: brokerID, TabType: services.TabAmount, CategoryID: categoryID, Tabs: amounts},
		)
	}

	content := templ.ComponentFunc(func(ctx context.Context, wr io.Writer) error {
		if _, err := io.WriteString(wr, `<section class="challenge-matrix">`); err != nil {
			return err
		}
		for _, strip := range strips {
			if err := tabStrip(strip).Render(ctx, wr); err != nil {
				return err
			}
		}
		_, err := io.WriteString(wr, `</section>`)
		return err
	})

	component := layouts.Base(layouts.BaseProps{
		Title:    "Challenge Matrix",
		NavItems: c.app.NavItems(),
	}, content)
	templ.Handler(component).ServeHTTP(w, r)
}

type moveDTO struct {
	From int `form:"from" validate:"min=0"`
	To   int `form:"to" validate:"min=0"`
}

// Move applies one drag-drop. The response is the strip fragment in its
// settled order; a reverted move carries the failure message inside the
// fragment so the user sees both the toast and server truth.
func (c *ChallengesController) Move(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	brokerID := vars["brokerID"]
	tabType, err := services.ParseTabType(vars["tabType"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	categoryID := r.URL.Query().Get("broker_challenge_category_id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dto := &moveDTO{}
	if err := shared.Decoder.Decode(dto, r.PostForm); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		http.Error(w, "Drop positions must be non-negative", http.StatusBadRequest)
		return
	}

	res, moveErr := c.service.Reorder(r.Context(), brokerID, tabType, categoryID, dto.From, dto.To)
	if moveErr != nil && !res.Reverted {
		// The move never reached a splice (bad index or missing strip).
		c.renderError(w, r, moveErr)
		return
	}

	strip, err := c.service.Strip(r.Context(), brokerID, tabType, categoryID)
	if err != nil {
		c.renderError(w, r, err)
		return
	}

	props := tabStripProps{
		BrokerID:   brokerID,
		TabType:    tabType,
		CategoryID: categoryID,
		Tabs:       strip,
	}
	if moveErr != nil {
		composables.UseLogger(r.Context()).WithError(moveErr).Warn("tab reorder reverted")
		props.Error = moveErr.Error()
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	templ.Handler(tabStrip(props)).ServeHTTP(w, r)
}

// Clone copies a default tab into the broker's strip and refreshes the page.
func (c *ChallengesController) Clone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tabType, err := services.ParseTabType(vars["tabType"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	brokerID := vars["brokerID"]
	defaultTabID := r.URL.Query().Get("default_tab_id_to_clone")
	categoryID := r.URL.Query().Get("broker_challenge_category_id")
	if defaultTabID == "" {
		http.Error(w, "default_tab_id_to_clone is required", http.StatusBadRequest)
		return
	}

	if err := c.service.Clone(r.Context(), tabType, brokerID, defaultTabID, categoryID); err != nil {
		c.renderError(w, r, err)
		return
	}

	if htmx.IsHxRequest(r) {
		htmx.Refresh(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, c.basePath+"/"+brokerID, http.StatusSeeOther)
}

func (c *ChallengesController) renderError(w http.ResponseWriter, r *http.Request, err error) {
	conf := configuration.Use()
	var crudErr *crud.Error
	if errors.As(err, &crudErr) && crudErr.Unauthorized && conf.AuthRedirectEnabled {
		if htmx.IsHxRequest(r) {
			htmx.Redirect(w, conf.LoginURL)
			return
		}
		http.Redirect(w, r, conf.LoginURL, http.StatusSeeOther)
		return
	}
	composables.UseLogger(r.Context()).WithError(err).Error("challenge matrix request failed")
	http.Error(w, err.Error(), http.StatusUnprocessableEntity)
}
