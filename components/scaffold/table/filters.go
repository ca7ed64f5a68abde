package table

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/propscale/broker-admin/pkg/schema"
)

// FilterBarProps renders the server-declared filter controls as a GET form
// submitting back to the listing URL, which keeps filters in the query string.
type FilterBarProps struct {
	Action  string
	Filters schema.Filters
	// Values holds the currently applied filter values keyed by filter key.
	Values url.Values
}

func FilterBar(props FilterBarProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<form class="filter-bar" method="get" action="%s" hx-boost="true">`,
			templ.EscapeString(props.Action)); err != nil {
			return err
		}
		// Marks the resulting URL as an explicit filter choice, so an
		// all-empty submission clears the saved filters instead of being
		// rehydrated from them.
		if _, err := io.WriteString(w, `<input type="hidden" name="filtered" value="1">`); err != nil {
			return err
		}
		for _, filter := range props.Filters {
			if err := renderFilter(w, filter, props.Values.Get(filter.Key)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w,
			`<button type="submit">Apply</button>`+
				`<a class="filter-reset" href="`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, templ.EscapeString(props.Action)+"?filtered=1"); err != nil {
			return err
		}
		_, err := io.WriteString(w, `" hx-boost="true">Reset</a></form>`)
		return err
	})
}

func renderFilter(w io.Writer, filter schema.Filter, current string) error {
	title := ""
	if filter.Tooltip != "" {
		title = fmt.Sprintf(` title="%s"`, templ.EscapeString(filter.Tooltip))
	}
	if _, err := fmt.Fprintf(w, `<label%s>%s `, title, templ.EscapeString(filter.Label)); err != nil {
		return err
	}

	switch filter.Type {
	case schema.FilterSelect:
		if _, err := fmt.Fprintf(w, `<select name="%s">`, templ.EscapeString(filter.Key)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<option value="">All</option>`); err != nil {
			return err
		}
		for _, opt := range filter.Options {
			selected := ""
			if current != "" && current == opt.Value {
				selected = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
				templ.EscapeString(opt.Value), selected, templ.EscapeString(opt.Label)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select>`); err != nil {
			return err
		}
	case schema.FilterText:
		placeholder := ""
		if filter.Placeholder != "" {
			placeholder = fmt.Sprintf(` placeholder="%s"`, templ.EscapeString(filter.Placeholder))
		}
		if _, err := fmt.Fprintf(w, `<input type="text" name="%s" value="%s"%s>`,
			templ.EscapeString(filter.Key), templ.EscapeString(current), placeholder); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</label>`)
	return err
}
