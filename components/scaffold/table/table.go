// Package table renders schema-driven data tables: column set, cell kinds,
// sortability and filters all come from the server response, so one renderer
// serves every listing page.
package table

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/propscale/broker-admin/pkg/schema"
	"github.com/propscale/broker-admin/pkg/viewstate"
)

type TableColumn struct {
	Key      string
	Label    string
	Kind     schema.ColumnKind
	Sortable bool
	SortDir  viewstate.SortDirection
	SortURL  string
	Visible  bool
}

type ColumnOpt func(*TableColumn)

func WithSortable(dir viewstate.SortDirection, sortURL string) ColumnOpt {
	return func(c *TableColumn) {
		c.Sortable = true
		c.SortDir = dir
		c.SortURL = sortURL
	}
}

func WithKind(kind schema.ColumnKind) ColumnOpt {
	return func(c *TableColumn) {
		c.Kind = kind
	}
}

func WithHidden() ColumnOpt {
	return func(c *TableColumn) {
		c.Visible = false
	}
}

func Column(key, label string, opts ...ColumnOpt) TableColumn {
	col := TableColumn{Key: key, Label: label, Kind: schema.ColumnText, Visible: true}
	for _, opt := range opts {
		opt(&col)
	}
	return col
}

type TableCell struct {
	Component templ.Component
	// Key ties the cell to its column so client-side visibility toggling can
	// address both the header and the body cells.
	Key    string
	Hidden bool
}

func Cell(component templ.Component) TableCell {
	return TableCell{Component: component}
}

func (c TableCell) ForColumn(key string) TableCell {
	c.Key = key
	return c
}

func (c TableCell) AsHidden() TableCell {
	c.Hidden = true
	return c
}

type TableRow struct {
	Cells []TableCell
	Attrs templ.Attributes
}

func Row(cells ...TableCell) TableRow {
	return TableRow{Cells: cells}
}

func (r TableRow) WithAttrs(attrs templ.Attributes) TableRow {
	r.Attrs = attrs
	return r
}

type TableConfig struct {
	Title      string
	DataURL    string
	Columns    []TableColumn
	Rows       []TableRow
	Pagination *PaginationProps
	Filters    templ.Component
	// Empty-state message shown when Rows is empty.
	EmptyMessage string
}

type TableOpt func(*TableConfig)

func WithFilters(filters templ.Component) TableOpt {
	return func(cfg *TableConfig) {
		cfg.Filters = filters
	}
}

func WithEmptyMessage(msg string) TableOpt {
	return func(cfg *TableConfig) {
		cfg.EmptyMessage = msg
	}
}

func NewTableConfig(title, dataURL string, opts ...TableOpt) *TableConfig {
	cfg := &TableConfig{
		Title:        title,
		DataURL:      dataURL,
		EmptyMessage: "No records found",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (cfg *TableConfig) AddColumns(cols ...TableColumn) *TableConfig {
	cfg.Columns = append(cfg.Columns, cols...)
	return cfg
}

func (cfg *TableConfig) AddRows(rows ...TableRow) *TableConfig {
	cfg.Rows = append(cfg.Rows, rows...)
	return cfg
}

func (cfg *TableConfig) SetPagination(p *PaginationProps) *TableConfig {
	cfg.Pagination = p
	return cfg
}

func sortIndicator(dir viewstate.SortDirection) string {
	switch dir {
	case viewstate.SortAsc:
		return "▲"
	case viewstate.SortDesc:
		return "▼"
	default:
		return ""
	}
}

// renderHeader emits every column, including hidden ones: hidden columns stay
// in the DOM with a hiding class so the column picker can re-enable them
// without a reload.
func renderHeader(w io.Writer, cfg *TableConfig) error {
	if _, err := io.WriteString(w, `<thead><tr>`); err != nil {
		return err
	}
	for _, col := range cfg.Columns {
		hiddenClass := ""
		if !col.Visible {
			hiddenClass = ` class="col-hidden"`
		}
		if col.Sortable {
			indicator := sortIndicator(col.SortDir)
			if indicator != "" {
				indicator = ` <span class="sort-indicator">` + indicator + `</span>`
			}
			if _, err := fmt.Fprintf(w,
				`<th scope="col" data-column="%s"%s><a href="%s" hx-boost="true">%s</a>%s</th>`,
				templ.EscapeString(col.Key),
				hiddenClass,
				templ.EscapeString(col.SortURL),
				templ.EscapeString(col.Label),
				indicator,
			); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, `<th scope="col" data-column="%s"%s>%s</th>`,
			templ.EscapeString(col.Key), hiddenClass, templ.EscapeString(col.Label)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, `</tr></thead>`); err != nil {
		return err
	}
	return nil
}

// Rows renders only the tbody, the fragment swapped in by paging and filter
// requests.
func Rows(cfg *TableConfig) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<tbody id="table-body">`); err != nil {
			return err
		}
		if len(cfg.Rows) == 0 {
			span := len(cfg.Columns)
			if span == 0 {
				span = 1
			}
			if _, err := fmt.Fprintf(w,
				`<tr><td colspan="%d" class="empty-state">%s</td></tr>`,
				span, templ.EscapeString(cfg.EmptyMessage)); err != nil {
				return err
			}
		}
		for _, row := range cfg.Rows {
			if _, err := io.WriteString(w, `<tr`); err != nil {
				return err
			}
			if err := templ.RenderAttributes(ctx, w, row.Attrs); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `>`); err != nil {
				return err
			}
			for _, cell := range row.Cells {
				if _, err := io.WriteString(w, `<td`); err != nil {
					return err
				}
				if cell.Key != "" {
					if _, err := fmt.Fprintf(w, ` data-column="%s"`, templ.EscapeString(cell.Key)); err != nil {
						return err
					}
				}
				if cell.Hidden {
					if _, err := io.WriteString(w, ` class="col-hidden"`); err != nil {
						return err
					}
				}
				if _, err := io.WriteString(w, `>`); err != nil {
					return err
				}
				if cell.Component != nil {
					if err := cell.Component.Render(ctx, w); err != nil {
						return err
					}
				}
				if _, err := io.WriteString(w, `</td>`); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tr>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody>`)
		return err
	})
}

// Content renders the full table section: filters, column headers, body and
// pagination controls.
func Content(cfg *TableConfig) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="data-table" data-url="%s">`,
			templ.EscapeString(cfg.DataURL)); err != nil {
			return err
		}
		if cfg.Title != "" {
			if _, err := fmt.Fprintf(w, `<h1>%s</h1>`, templ.EscapeString(cfg.Title)); err != nil {
				return err
			}
		}
		if cfg.Filters != nil {
			if err := cfg.Filters.Render(ctx, w); err != nil {
				return err
			}
		}
		if len(cfg.Columns) > 0 {
			if err := ColumnPicker(cfg.Columns).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<table>`); err != nil {
			return err
		}
		if err := renderHeader(w, cfg); err != nil {
			return err
		}
		if err := Rows(cfg).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</table>`); err != nil {
			return err
		}
		if cfg.Pagination != nil {
			if err := Pagination(cfg.Pagination).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, columnToggleScript); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// columnToggleScript wires the picker checkboxes to the matching header and
// body cells. Toggling is purely client-side: hidden columns are still in the
// DOM, only their class changes.
const columnToggleScript = `<script>(function(){` +
	`var section=document.currentScript.parentElement;` +
	`section.addEventListener("change",function(e){` +
	`if(e.target.name!=="column")return;` +
	`section.querySelectorAll('[data-column="'+e.target.value+'"]').forEach(function(el){` +
	`el.classList.toggle("col-hidden",!e.target.checked);});});})()</script>`

// PaginationProps drives the pager: page links are prebuilt URLs so the
// component stays free of view-state logic.
type PaginationProps struct {
	Pagination schema.Pagination
	FirstURL   string
	PrevURL    string
	NextURL    string
	LastURL    string
}

func pageControl(w io.Writer, class, label, href string, enabled bool) error {
	if enabled {
		_, err := fmt.Fprintf(w, `<a class="%s" href="%s" hx-boost="true">%s</a>`,
			class, templ.EscapeString(href), label)
		return err
	}
	_, err := fmt.Fprintf(w, `<span class="%s" aria-disabled="true">%s</span>`, class, label)
	return err
}

// Pagination renders the first/prev/next/last controls and the
// "Showing X to Y of Z" summary. First and Previous disable together on the
// first page, Next and Last on the last. Boundary buttons render disabled
// instead of linking nowhere.
func Pagination(props *PaginationProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := props.Pagination
		if _, err := io.WriteString(w, `<nav class="pagination">`); err != nil {
			return err
		}

		if err := pageControl(w, "page-first", "First", props.FirstURL, p.HasPrev()); err != nil {
			return err
		}
		if err := pageControl(w, "page-prev", "Previous", props.PrevURL, p.HasPrev()); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, `<span class="page-summary">Showing %d to %d of %d</span>`,
			p.From, p.To, p.Total); err != nil {
			return err
		}

		if err := pageControl(w, "page-next", "Next", props.NextURL, p.HasNext()); err != nil {
			return err
		}
		if err := pageControl(w, "page-last", "Last", props.LastURL, p.HasNext()); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</nav>`)
		return err
	})
}

// ColumnPicker renders the column visibility dropdown. Checkbox state drives
// client-side column toggling; unchecking hides the column without a reload.
func ColumnPicker(cols []TableColumn) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<details class="column-picker"><summary>Columns</summary><ul>`); err != nil {
			return err
		}
		for _, col := range cols {
			checked := ""
			if col.Visible {
				checked = " checked"
			}
			if _, err := fmt.Fprintf(w,
				`<li><label><input type="checkbox" name="column" value="%s"%s> %s</label></li>`,
				templ.EscapeString(col.Key), checked, templ.EscapeString(col.Label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></details>`)
		return err
	})
}

// RowNumber renders the leading ordinal column: the absolute position of the
// row in the full result set, not on the current page.
func RowNumber(pagination schema.Pagination, indexOnPage int) templ.Component {
	n := pagination.From + indexOnPage
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, strconv.Itoa(n))
		return err
	})
}
