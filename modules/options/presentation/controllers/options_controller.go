package controllers

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/propscale/broker-admin/components/layouts"
	"github.com/propscale/broker-admin/components/scaffold/actions"
	"github.com/propscale/broker-admin/components/scaffold/form"
	"github.com/propscale/broker-admin/components/scaffold/table"
	"github.com/propscale/broker-admin/modules/options/services"
	"github.com/propscale/broker-admin/pkg/application"
	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/configuration"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/htmx"
	"github.com/propscale/broker-admin/pkg/middleware"
	"github.com/propscale/broker-admin/pkg/schema"
	"github.com/propscale/broker-admin/pkg/viewstate"
)

type OptionsController struct {
	app         application.Application
	service     *services.OptionsService
	basePath    string
	filterStore viewstate.FilterStore
}

func NewOptionsController(app application.Application) application.Controller {
	conf := configuration.Use()
	return &OptionsController{
		app:         app,
		service:     app.Service(services.OptionsService{}).(*services.OptionsService),
		basePath:    "/broker-options",
		filterStore: viewstate.NewCookieFilterStore(conf.FilterCookiePrefix, conf.GoAppEnvironment == configuration.Production),
	}
}

func (c *OptionsController) Key() string {
	return c.basePath
}

func (c *OptionsController) Register(r *mux.Router) {
	commonMiddleware := []mux.MiddlewareFunc{
		middleware.Authorize(),
		middleware.RequestParams(),
		middleware.RequireAuth(),
	}

	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(commonMiddleware...)

	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/new", c.New).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}/edit", c.Edit).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *OptionsController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := viewstate.FromQuery(q, viewstate.FilterKeysFromQuery(q))
	explicitFilters := q.Get(viewstate.ParamFiltered) == "1"

	if !explicitFilters && len(state.Filters) == 0 {
		if stored := c.filterStore.Load(r, "broker-options"); len(stored) > 0 {
			if next, changed := viewstate.Rehydrate(state, stored); changed {
				http.Redirect(w, r, next.URL(c.basePath), http.StatusSeeOther)
				return
			}
		}
	}
	paging := composables.UsePaginated(r)
	state.Page, state.PerPage = paging.Page, paging.PerPage

	page, err := c.service.List(r.Context(), state)
	if err != nil {
		c.renderError(w, r, err)
		return
	}

	applied := crud.Query(page.Filters, state.Filters)
	if explicitFilters || len(applied) > 0 {
		c.filterStore.Save(w, "broker-options", applied)
	}

	cfg := table.Build(table.BuildOptions{
		Title:    "Broker Options",
		BasePath: c.basePath,
		RowActions: func(row schema.Row) templ.Component {
			id := row.ID()
			return actions.RenderRowActions(
				actions.Link("Edit", c.basePath+"/"+id+"/edit"),
				actions.Delete(c.basePath+"/"+id),
			)
		},
	}, page, state)

	c.renderPage(w, r, "Broker Options", table.Content(cfg))
}

func (c *OptionsController) New(w http.ResponseWriter, r *http.Request) {
	cfg, err := c.service.FormConfig(r.Context())
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	c.renderPage(w, r, "New Option", form.XForm(form.Props{
		ID:     "option-form",
		Action: c.basePath,
		Method: "post",
		Config: cfg,
	}))
}

func (c *OptionsController) Create(w http.ResponseWriter, r *http.Request) {
	c.submit(w, r, "")
}

func (c *OptionsController) Edit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cfg, err := c.service.FormConfig(r.Context())
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	record, err := c.service.Get(r.Context(), id)
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	c.renderPage(w, r, "Edit Option", form.XForm(form.Props{
		ID:     "option-form",
		Action: c.basePath + "/" + id,
		Method: "put",
		Config: cfg,
		Values: form.FlattenRecord(cfg, record),
	}))
}

func (c *OptionsController) Update(w http.ResponseWriter, r *http.Request) {
	c.submit(w, r, mux.Vars(r)["id"])
}

func (c *OptionsController) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := c.service.Delete(r.Context(), id); err != nil {
		c.mutationError(w, r, err)
		return
	}
	if htmx.IsHxRequest(r) {
		htmx.Refresh(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, c.basePath, http.StatusSeeOther)
}

func (c *OptionsController) submit(w http.ResponseWriter, r *http.Request, id string) {
	cfg, err := c.service.FormConfig(r.Context())
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload := form.ParseSubmission(cfg, r.PostForm)

	method, action := "post", c.basePath
	if id != "" {
		method, action = "put", c.basePath+"/"+id
	}
	rerender := func(fieldErrors map[string][]string) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		c.renderPage(w, r, "Validation failed", form.XForm(form.Props{
			ID:     "option-form",
			Action: action,
			Method: method,
			Config: cfg,
			Values: form.FlattenRecord(cfg, payload),
			Errors: fieldErrors,
		}))
	}

	if fieldErrors := form.Validate(cfg, payload); len(fieldErrors) > 0 {
		rerender(fieldErrors)
		return
	}

	if id == "" {
		err = c.service.Create(r.Context(), payload)
	} else {
		err = c.service.Update(r.Context(), id, payload)
	}
	if err != nil {
		var crudErr *crud.Error
		if errors.As(err, &crudErr) && len(crudErr.Fields) > 0 {
			rerender(crudErr.Fields)
			return
		}
		c.mutationError(w, r, err)
		return
	}

	if htmx.IsHxRequest(r) {
		htmx.Redirect(w, c.basePath)
		return
	}
	http.Redirect(w, r, c.basePath, http.StatusSeeOther)
}

func (c *OptionsController) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	if c.redirectUnauthorized(w, r, err) {
		return
	}
	composables.UseLogger(r.Context()).WithError(err).Error("option mutation failed")
	http.Error(w, err.Error(), http.StatusUnprocessableEntity)
}

func (c *OptionsController) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if c.redirectUnauthorized(w, r, err) {
		return
	}
	composables.UseLogger(r.Context()).WithError(err).Error("options page failed")
	w.WriteHeader(http.StatusBadGateway)
	component := layouts.Base(layouts.BaseProps{
		Title:      "Broker Options",
		NavItems:   c.app.NavItems(),
		Flash:      err.Error(),
		FlashError: true,
	}, nil)
	templ.Handler(component).ServeHTTP(w, r)
}

func (c *OptionsController) redirectUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	conf := configuration.Use()
	var crudErr *crud.Error
	if !errors.As(err, &crudErr) || !crudErr.Unauthorized || !conf.AuthRedirectEnabled {
		return false
	}
	if htmx.IsHxRequest(r) {
		htmx.Redirect(w, conf.LoginURL)
		return true
	}
	http.Redirect(w, r, conf.LoginURL, http.StatusSeeOther)
	return true
}

func (c *OptionsController) renderPage(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	component := layouts.Base(layouts.BaseProps{
		Title:    title,
		NavItems: c.app.NavItems(),
	}, content)
	templ.Handler(component).ServeHTTP(w, r)
}
