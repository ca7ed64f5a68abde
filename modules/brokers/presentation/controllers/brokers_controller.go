package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/propscale/broker-admin/components/layouts"
	"github.com/propscale/broker-admin/components/scaffold/actions"
	"github.com/propscale/broker-admin/components/scaffold/form"
	"github.com/propscale/broker-admin/components/scaffold/table"
	"github.com/propscale/broker-admin/modules/brokers/services"
	"github.com/propscale/broker-admin/pkg/application"
	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/configuration"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/htmx"
	"github.com/propscale/broker-admin/pkg/middleware"
	"github.com/propscale/broker-admin/pkg/schema"
	"github.com/propscale/broker-admin/pkg/viewstate"
)

const brokerIDPlaceholder = "#broker_id#"

type BrokersController struct {
	app         application.Application
	service     *services.BrokersService
	basePath    string
	filterStore viewstate.FilterStore
}

func NewBrokersController(app application.Application) application.Controller {
	conf := configuration.Use()
	return &BrokersController{
		app:         app,
		service:     app.Service(services.BrokersService{}).(*services.BrokersService),
		basePath:    "/brokers",
		filterStore: viewstate.NewCookieFilterStore(conf.FilterCookiePrefix, conf.GoAppEnvironment == configuration.Production),
	}
}

func (c *BrokersController) Key() string {
	return c.basePath
}

func (c *BrokersController) Register(r *mux.Router) {
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
	router.HandleFunc("/{id}/toggle-active", c.ToggleActive).Methods(http.MethodPatch)
	router.HandleFunc("/{id}/dashboard", c.Dashboard).Methods(http.MethodGet)

	nested := "/{id}/{resource:" + strings.Join(services.NestedResources, "|") + "}"
	router.HandleFunc(nested, c.NestedList).Methods(http.MethodGet)
	router.HandleFunc(nested+"/new", c.NestedNew).Methods(http.MethodGet)
	router.HandleFunc(nested, c.NestedCreate).Methods(http.MethodPost)
	router.HandleFunc(nested+"/{nestedID}/edit", c.NestedEdit).Methods(http.MethodGet)
	router.HandleFunc(nested+"/{nestedID}", c.NestedUpdate).Methods(http.MethodPut)
	router.HandleFunc(nested+"/{nestedID}", c.NestedDelete).Methods(http.MethodDelete)
}

func (c *BrokersController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := viewstate.FromQuery(q, viewstate.FilterKeysFromQuery(q))
	explicitFilters := q.Get(viewstate.ParamFiltered) == "1"

	if !explicitFilters && len(state.Filters) == 0 {
		if stored := c.filterStore.Load(r, "brokers"); len(stored) > 0 {
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
		c.filterStore.Save(w, "brokers", applied)
	}

	cfg := table.Build(table.BuildOptions{
		Title:        "Brokers",
		BasePath:     c.basePath,
		TriStateSort: true,
		RowActions:   c.rowActions,
	}, page, state)

	c.renderPage(w, r, "Brokers", table.Content(cfg))
}

func (c *BrokersController) rowActions(row schema.Row) templ.Component {
	id := row.ID()
	dashboard := strings.ReplaceAll(configuration.Use().DashboardURLTemplate, brokerIDPlaceholder, id)

	toggleLabel := "Activate"
	if schema.Truthy(row["active"]) {
		toggleLabel = "Deactivate"
	}

	return actions.RenderRowActions(
		actions.Link("Edit", c.basePath+"/"+id+"/edit"),
		actions.Toggle(toggleLabel, c.basePath+"/"+id+"/toggle-active"),
		actions.ExternalLink("Dashboard", dashboard),
		actions.Delete(c.basePath+"/"+id),
	)
}

func (c *BrokersController) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := c.service.ToggleActive(r.Context(), id); err != nil {
		c.mutationError(w, r, err)
		return
	}
	c.mutationDone(w, r)
}

func (c *BrokersController) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := c.service.Delete(r.Context(), id); err != nil {
		c.mutationError(w, r, err)
		return
	}
	c.mutationDone(w, r)
}

// Dashboard redirects to the external broker dashboard with the row id
// substituted into the URL template.
func (c *BrokersController) Dashboard(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	target := strings.ReplaceAll(configuration.Use().DashboardURLTemplate, brokerIDPlaceholder, id)
	if htmx.IsHxRequest(r) {
		htmx.Redirect(w, target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (c *BrokersController) New(w http.ResponseWriter, r *http.Request) {
	cfg, err := c.service.FormConfig(r.Context())
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	c.renderPage(w, r, "New Broker", form.XForm(form.Props{
		ID:     "broker-form",
		Action: c.basePath,
		Method: "post",
		Config: cfg,
	}))
}

func (c *BrokersController) Create(w http.ResponseWriter, r *http.Request) {
	c.submitForm(w, r, c.service.Resource, c.basePath, "")
}

func (c *BrokersController) Edit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c.editForm(w, r, c.service.Resource, c.basePath, id, "Edit Broker")
}

func (c *BrokersController) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c.submitForm(w, r, c.service.Resource, c.basePath, id)
}

func (c *BrokersController) nestedResource(r *http.Request) (*crud.Resource, string, string) {
	vars := mux.Vars(r)
	brokerID, resource := vars["id"], vars["resource"]
	base := c.basePath + "/" + brokerID + "/" + resource
	return c.service.Nested(brokerID, resource), base, resource
}

func (c *BrokersController) NestedList(w http.ResponseWriter, r *http.Request) {
	resource, base, name := c.nestedResource(r)

	q := r.URL.Query()
	state := viewstate.FromQuery(q, viewstate.FilterKeysFromQuery(q))
	paging := composables.UsePaginated(r)
	state.Page, state.PerPage = paging.Page, paging.PerPage

	page, err := resource.List(r.Context(), state)
	if err != nil {
		c.renderError(w, r, err)
		return
	}

	title := strings.ToUpper(name[:1]) + name[1:]
	cfg := table.Build(table.BuildOptions{
		Title:    title,
		BasePath: base,
		RowActions: func(row schema.Row) templ.Component {
			id := row.ID()
			return actions.RenderRowActions(
				actions.Link("Edit", base+"/"+id+"/edit"),
				actions.Delete(base+"/"+id),
			)
		},
	}, page, state)

	c.renderPage(w, r, title, table.Content(cfg))
}

func (c *BrokersController) NestedNew(w http.ResponseWriter, r *http.Request) {
	resource, base, name := c.nestedResource(r)
	cfg, err := resource.FormConfig(r.Context())
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	c.renderPage(w, r, "New "+name, form.XForm(form.Props{
		ID:     name + "-form",
		Action: base,
		Method: "post",
		Config: cfg,
	}))
}

func (c *BrokersController) NestedCreate(w http.ResponseWriter, r *http.Request) {
	resource, base, _ := c.nestedResource(r)
	c.submitForm(w, r, resource, base, "")
}

func (c *BrokersController) NestedEdit(w http.ResponseWriter, r *http.Request) {
	resource, base, name := c.nestedResource(r)
	c.editForm(w, r, resource, base, mux.Vars(r)["nestedID"], "Edit "+name)
}

func (c *BrokersController) NestedUpdate(w http.ResponseWriter, r *http.Request) {
	resource, base, _ := c.nestedResource(r)
	c.submitForm(w, r, resource, base, mux.Vars(r)["nestedID"])
}

func (c *BrokersController) NestedDelete(w http.ResponseWriter, r *http.Request) {
	resource, _, _ := c.nestedResource(r)
	if err := resource.Delete(r.Context(), mux.Vars(r)["nestedID"]); err != nil {
		c.mutationError(w, r, err)
		return
	}
	c.mutationDone(w, r)
}

// editForm renders the XForm prefilled from the record.
func (c *BrokersController) editForm(w http.ResponseWriter, r *http.Request, resource *crud.Resource, base, id, title string) {
	cfg, err := resource.FormConfig(r.Context())
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	record, err := resource.Get(r.Context(), id)
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	c.renderPage(w, r, title, form.XForm(form.Props{
		ID:     "edit-form",
		Action: base + "/" + id,
		Method: "put",
		Config: cfg,
		Values: form.FlattenRecord(cfg, record),
	}))
}

// submitForm handles both create (empty id) and update submissions. On
// server-side validation failure the form re-renders with inline errors and
// the submitted values intact.
func (c *BrokersController) submitForm(w http.ResponseWriter, r *http.Request, resource *crud.Resource, base, id string) {
	cfg, err := resource.FormConfig(r.Context())
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload := form.ParseSubmission(cfg, r.PostForm)

	method, action := "post", base
	if id != "" {
		method, action = "put", base+"/"+id
	}
	rerender := func(fieldErrors map[string][]string) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		c.renderPage(w, r, "Validation failed", form.XForm(form.Props{
			ID:     "edit-form",
			Action: action,
			Method: method,
			Config: cfg,
			Values: form.FlattenRecord(cfg, payload),
			Errors: fieldErrors,
		}))
	}

	// Schema-derived validation runs before anything leaves the process.
	if fieldErrors := form.Validate(cfg, payload); len(fieldErrors) > 0 {
		rerender(fieldErrors)
		return
	}

	if id == "" {
		err = resource.Create(r.Context(), payload)
	} else {
		err = resource.Update(r.Context(), id, payload)
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
		htmx.Redirect(w, base)
		return
	}
	http.Redirect(w, r, base, http.StatusSeeOther)
}

// mutationDone triggers the refetch-on-mutation refresh.
func (c *BrokersController) mutationDone(w http.ResponseWriter, r *http.Request) {
	if htmx.IsHxRequest(r) {
		htmx.Refresh(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, c.basePath, http.StatusSeeOther)
}

// mutationError surfaces the normalized message without triggering a
// refresh, leaving prior UI state intact.
func (c *BrokersController) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	if c.redirectUnauthorized(w, r, err) {
		return
	}
	composables.UseLogger(r.Context()).WithError(err).Error("broker mutation failed")
	http.Error(w, err.Error(), http.StatusUnprocessableEntity)
}

func (c *BrokersController) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if c.redirectUnauthorized(w, r, err) {
		return
	}
	composables.UseLogger(r.Context()).WithError(err).Error("broker page failed")
	w.WriteHeader(http.StatusBadGateway)
	c.renderFlash(w, r, err.Error())
}

func (c *BrokersController) redirectUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
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

func (c *BrokersController) renderFlash(w http.ResponseWriter, r *http.Request, message string) {
	component := layouts.Base(layouts.BaseProps{
		Title:      "Brokers",
		NavItems:   c.app.NavItems(),
		Flash:      message,
		FlashError: true,
	}, nil)
	templ.Handler(component).ServeHTTP(w, r)
}

func (c *BrokersController) renderPage(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	component := layouts.Base(layouts.BaseProps{
		Title:    title,
		NavItems: c.app.NavItems(),
	}, content)
	templ.Handler(component).ServeHTTP(w, r)
}
