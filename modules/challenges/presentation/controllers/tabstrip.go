package controllers

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/propscale/broker-admin/modules/challenges/services"
)

// tabStripProps renders one draggable strip of the challenge matrix.
type tabStripProps struct {
	BrokerID   string
	TabType    services.TabType
	CategoryID string
	Tabs       []services.Tab
	// Error is a one-shot message shown after a reverted reorder.
	Error string
}

func (p tabStripProps) moveURL() string {
	u := "/challenges/" + p.BrokerID + "/tabs/" + string(p.TabType) + "/move"
	if p.CategoryID != "" {
		u += "?broker_challenge_category_id=" + url.QueryEscape(p.CategoryID)
	}
	return u
}

func (p tabStripProps) stripID() string {
	return "tabs-" + string(p.TabType)
}

// tabStrip renders the sortable tab list. Each drop posts {from,to} indexes
// to the move endpoint and swaps the strip with the server's rendering, so
// the optimistic order and the revert path share one code path.
func tabStrip(p tabStripProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<ul id="%s" class="tab-strip" data-move-url="%s" hx-target="this" hx-swap="outerHTML">`,
			templ.EscapeString(p.stripID()),
			templ.EscapeString(p.moveURL())); err != nil {
			return err
		}
		if p.Error != "" {
			if _, err := fmt.Fprintf(w, `<li class="tab-error" role="alert">%s</li>`,
				templ.EscapeString(p.Error)); err != nil {
				return err
			}
		}
		for i, tab := range p.Tabs {
			if _, err := fmt.Fprintf(w,
				`<li class="tab" draggable="true" data-id="%d" data-index="%d">%s</li>`,
				tab.ID, i, templ.EscapeString(tab.Label())); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}
