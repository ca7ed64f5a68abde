// Package actions renders per-row action controls: edit, delete with
// confirmation, toggle and external redirects.
package actions

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

type RowAction struct {
	Label string
	// URL is either a navigation href or the endpoint for Method.
	URL string
	// Method is empty for plain links; otherwise the HTMX verb used.
	Method string
	// Confirm, when set, makes HTMX ask before issuing the request.
	Confirm string
	// Target element for the HTMX swap; defaults to the table body.
	Target string
	// NewTab opens a plain link in a separate tab.
	NewTab bool
}

func Link(label, href string) RowAction {
	return RowAction{Label: label, URL: href}
}

func ExternalLink(label, href string) RowAction {
	return RowAction{Label: label, URL: href, NewTab: true}
}

func Delete(url string) RowAction {
	return RowAction{
		Label:   "Delete",
		URL:     url,
		Method:  "delete",
		Confirm: "Are you sure you want to delete this record?",
	}
}

func Toggle(label, url string) RowAction {
	return RowAction{Label: label, URL: url, Method: "patch"}
}

func RenderRowActions(rowActions ...RowAction) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="row-actions">`); err != nil {
			return err
		}
		for _, a := range rowActions {
			if err := renderAction(w, a); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func renderAction(w io.Writer, a RowAction) error {
	if a.Method == "" {
		target := ""
		if a.NewTab {
			target = ` target="_blank" rel="noopener"`
		}
		_, err := fmt.Fprintf(w, `<a class="action" href="%s"%s>%s</a>`,
			templ.EscapeString(a.URL), target, templ.EscapeString(a.Label))
		return err
	}

	target := a.Target
	if target == "" {
		target = "#table-body"
	}
	confirm := ""
	if a.Confirm != "" {
		confirm = fmt.Sprintf(` hx-confirm="%s"`, templ.EscapeString(a.Confirm))
	}
	_, err := fmt.Fprintf(w,
		`<button class="action" hx-%s="%s" hx-target="%s" hx-swap="outerHTML"%s>%s</button>`,
		a.Method,
		templ.EscapeString(a.URL),
		templ.EscapeString(target),
		confirm,
		templ.EscapeString(a.Label))
	return err
}
