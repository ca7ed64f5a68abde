package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/propscale/broker-admin/components/layouts"
	"github.com/propscale/broker-admin/modules/rebates/services"
	"github.com/propscale/broker-admin/pkg/application"
	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/configuration"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/htmx"
	"github.com/propscale/broker-admin/pkg/middleware"
)

type RebatesController struct {
	app      application.Application
	service  *services.RebatesService
	basePath string
}

func NewRebatesController(app application.Application) application.Controller {
	return &RebatesController{
		app:      app,
		service:  app.Service(services.RebatesService{}).(*services.RebatesService),
		basePath: "/rebates",
	}
}

func (c *RebatesController) Key() string {
	return c.basePath
}

func (c *RebatesController) Register(r *mux.Router) {
	commonMiddleware := []mux.MiddlewareFunc{
		middleware.Authorize(),
		middleware.RequestParams(),
		middleware.RequireAuth(),
	}

	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(commonMiddleware...)

	router.HandleFunc("/{brokerID:[0-9]+}", c.Show).Methods(http.MethodGet)
	router.HandleFunc("/{brokerID:[0-9]+}", c.Save).Methods(http.MethodPut)
}

func (c *RebatesController) Show(w http.ResponseWriter, r *http.Request) {
	brokerID := mux.Vars(r)["brokerID"]
	matrix, err := c.service.Matrix(r.Context(), brokerID)
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	c.renderMatrix(w, r, brokerID, matrix, nil)
}

// Save parses every grid cell and submits the full matrix. Any cell that is
// not a valid decimal blocks the submit with an inline error.
func (c *RebatesController) Save(w http.ResponseWriter, r *http.Request) {
	brokerID := mux.Vars(r)["brokerID"]
	matrix, err := c.service.Matrix(r.Context(), brokerID)
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rates := make([]services.Rate, 0, len(matrix.AccountTypes)*len(matrix.Tiers))
	fieldErrors := map[string][]string{}
	for _, accountType := range matrix.AccountTypes {
		for _, tier := range matrix.Tiers {
			key := services.CellKey(accountType.ID, tier.ID)
			raw := r.PostForm.Get(key)
			if raw == "" {
				raw = "0"
			}
			rate, err := decimal.NewFromString(raw)
			if err != nil {
				fieldErrors[key] = append(fieldErrors[key], "Must be a decimal number")
				continue
			}
			rates = append(rates, services.Rate{
				AccountTypeID: accountType.ID,
				TierID:        tier.ID,
				Rate:          rate,
			})
		}
	}
	if len(fieldErrors) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		c.renderMatrix(w, r, brokerID, matrix, fieldErrors)
		return
	}

	if err := c.service.Save(r.Context(), brokerID, rates); err != nil {
		var crudErr *crud.Error
		if errors.As(err, &crudErr) && len(crudErr.Fields) > 0 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			c.renderMatrix(w, r, brokerID, matrix, crudErr.Fields)
			return
		}
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

func (c *RebatesController) renderMatrix(w http.ResponseWriter, r *http.Request, brokerID string, matrix *services.Matrix, fieldErrors map[string][]string) {
	grid := templ.ComponentFunc(func(ctx context.Context, wr io.Writer) error {
		if _, err := fmt.Fprintf(wr,
			`<form id="rebate-matrix" hx-put="%s" hx-target="#rebate-matrix" hx-swap="outerHTML"><table><thead><tr><th>Account Type</th>`,
			templ.EscapeString(c.basePath+"/"+brokerID)); err != nil {
			return err
		}
		for _, tier := range matrix.Tiers {
			if _, err := fmt.Fprintf(wr, `<th>%s</th>`, templ.EscapeString(tier.Name)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(wr, `</tr></thead><tbody>`); err != nil {
			return err
		}
		for _, accountType := range matrix.AccountTypes {
			if _, err := fmt.Fprintf(wr, `<tr><th scope="row">%s</th>`,
				templ.EscapeString(accountType.Name)); err != nil {
				return err
			}
			for _, tier := range matrix.Tiers {
				key := services.CellKey(accountType.ID, tier.ID)
				if _, err := fmt.Fprintf(wr,
					`<td><input type="text" inputmode="decimal" name="%s" value="%s">`,
					templ.EscapeString(key),
					templ.EscapeString(matrix.Rate(accountType.ID, tier.ID).String())); err != nil {
					return err
				}
				for _, msg := range fieldErrors[key] {
					if _, err := fmt.Fprintf(wr, `<p class="field-error">%s</p>`,
						templ.EscapeString(msg)); err != nil {
						return err
					}
				}
				if _, err := io.WriteString(wr, `</td>`); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(wr, `</tr>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(wr, `</tbody></table><button type="submit">Save</button></form>`)
		return err
	})

	component := layouts.Base(layouts.BaseProps{
		Title:    "Rebate Matrix",
		NavItems: c.app.NavItems(),
	}, grid)
	templ.Handler(component).ServeHTTP(w, r)
}

func (c *RebatesController) renderError(w http.ResponseWriter, r *http.Request, err error) {
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
	composables.UseLogger(r.Context()).WithError(err).Error("rebate matrix request failed")
	http.Error(w, err.Error(), http.StatusUnprocessableEntity)
}
