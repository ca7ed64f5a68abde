package table

import (
	"bytes"
	"context"
	"net/url"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/schema"
	"github.com/propscale/broker-admin/pkg/viewstate"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestBooleanCell(t *testing.T) {
	// Only the truthy set {1, true, "1", "true"} renders Yes.
	for _, v := range []any{true, float64(1), "1", "true"} {
		assert.Contains(t, render(t, BooleanCell(v)), "Yes", "value %v", v)
	}
	for _, v := range []any{false, float64(0), "yes", "TRUE", nil, float64(2)} {
		assert.Contains(t, render(t, BooleanCell(v)), "No", "value %v", v)
	}
}

func TestImageCell(t *testing.T) {
	html := render(t, ImageCell("https://cdn.example.com/logo.png"))
	assert.Contains(t, html, `<img`)
	assert.Contains(t, html, `src="https://cdn.example.com/logo.png"`)

	// Relative paths and non-strings degrade to text.
	assert.NotContains(t, render(t, ImageCell("/uploads/logo.png")), "<img")
	assert.NotContains(t, render(t, ImageCell(float64(42))), "<img")
}

func TestJSONCell(t *testing.T) {
	html := render(t, JSONCell(map[string]any{"a": float64(1)}))
	assert.Contains(t, html, "<code")
	assert.Contains(t, html, `{&#34;a&#34;:1}`)
}

func TestTextCell_NilPlaceholder(t *testing.T) {
	assert.Contains(t, render(t, TextCell(nil)), "—")
	assert.Equal(t, "hello", render(t, TextCell("hello")))
}

func TestTextCell_EscapesHTML(t *testing.T) {
	assert.NotContains(t, render(t, TextCell("<script>")), "<script>")
}

func TestDateCell(t *testing.T) {
	assert.Contains(t, render(t, DateCell("2026-03-01T10:30:00Z")), "Mar 1, 2026")
	assert.Equal(t, "not-a-date", render(t, DateCell("not-a-date")))
}

func TestContent_SortableHeaderLinks(t *testing.T) {
	state := viewstate.FromQuery(url.Values{}, nil)
	cfg := NewTableConfig("Brokers", "/brokers").AddColumns(
		Column("name", "Name", WithSortable(viewstate.SortAsc, state.ToggleSort("name", true).URL("/brokers"))),
		Column("secret", "Secret", WithHidden()),
	)
	html := render(t, Content(cfg))

	assert.Contains(t, html, `href="/brokers?order_by=name&amp;order_direction=asc"`)
	assert.Contains(t, html, "No records found")
}

func TestContent_HiddenColumnsStayInDOM(t *testing.T) {
	cfg := NewTableConfig("Brokers", "/brokers").AddColumns(
		Column("name", "Name"),
		Column("secret", "Secret", WithHidden()),
	)
	html := render(t, Content(cfg))

	// Hidden columns render with a hiding class so the picker can re-enable
	// them without a reload.
	assert.Contains(t, html, `<th scope="col" data-column="secret" class="col-hidden">Secret</th>`)
	assert.Contains(t, html, `<th scope="col" data-column="name">Name</th>`)
	assert.Contains(t, html, `<details class="column-picker">`)
	assert.Contains(t, html, `value="secret"> Secret`)
	assert.Contains(t, html, `value="name" checked`)
	assert.Contains(t, html, `classList.toggle("col-hidden"`)
}

func TestPagination_BoundaryDisabling(t *testing.T) {
	first := render(t, Pagination(&PaginationProps{
		Pagination: schema.NewPagination(1, 10, 35),
		FirstURL:   "/brokers?page=1",
		PrevURL:    "/brokers?page=0",
		NextURL:    "/brokers?page=2",
		LastURL:    "/brokers?page=4",
	}))
	assert.Contains(t, first, `<span class="page-first" aria-disabled="true">First</span>`)
	assert.Contains(t, first, `<span class="page-prev" aria-disabled="true">`)
	assert.Contains(t, first, `href="/brokers?page=2"`)
	assert.Contains(t, first, `<a class="page-last" href="/brokers?page=4" hx-boost="true">Last</a>`)
	assert.Contains(t, first, "Showing 1 to 10 of 35")

	middle := render(t, Pagination(&PaginationProps{
		Pagination: schema.NewPagination(2, 10, 35),
		FirstURL:   "/brokers?page=1",
		PrevURL:    "/brokers?page=1",
		NextURL:    "/brokers?page=3",
		LastURL:    "/brokers?page=4",
	}))
	assert.Contains(t, middle, `<a class="page-first" href="/brokers?page=1" hx-boost="true">First</a>`)
	assert.NotContains(t, middle, `aria-disabled`)

	last := render(t, Pagination(&PaginationProps{
		Pagination: schema.NewPagination(4, 10, 35),
		FirstURL:   "/brokers?page=1",
		PrevURL:    "/brokers?page=3",
		NextURL:    "/brokers?page=5",
		LastURL:    "/brokers?page=4",
	}))
	assert.Contains(t, last, `<span class="page-next" aria-disabled="true">`)
	assert.Contains(t, last, `<span class="page-last" aria-disabled="true">Last</span>`)
	assert.Contains(t, last, "Showing 31 to 35 of 35")
}

func TestBuild_HiddenColumnCells(t *testing.T) {
	state := viewstate.FromQuery(url.Values{}, nil)
	page := &crud.ListPage{
		Columns: schema.Columns{
			{Key: "name", ColumnConfig: schema.ColumnConfig{Label: "Name", Visible: true}},
			{Key: "internal_ref", ColumnConfig: schema.ColumnConfig{Label: "Internal Ref"}},
		},
		Rows:       []schema.Row{{"id": "7", "name": "Alpha", "internal_ref": "X-99"}},
		Pagination: schema.NewPagination(2, 10, 35),
	}
	cfg := Build(BuildOptions{Title: "Brokers", BasePath: "/brokers"}, page, state)
	html := render(t, Content(cfg))

	// Hidden columns keep their cells in the body, only classed away.
	assert.Contains(t, html, `<td data-column="internal_ref" class="col-hidden">X-99</td>`)
	assert.Contains(t, html, `<td data-column="name">Alpha</td>`)
	// Page 1 is the clean URL, the last page carries an explicit page param.
	assert.Equal(t, "/brokers", cfg.Pagination.FirstURL)
	assert.Equal(t, "/brokers?page=4", cfg.Pagination.LastURL)
}

func TestRowNumber_IsAbsolutePosition(t *testing.T) {
	// Page 3 at 10 per page starts at row 21.
	p := schema.NewPagination(3, 10, 100)
	assert.Equal(t, "21", render(t, RowNumber(p, 0)))
	assert.Equal(t, "25", render(t, RowNumber(p, 4)))
}

func TestFilterBar(t *testing.T) {
	filters := schema.Filters{
		{Key: "status", FilterConfig: schema.FilterConfig{
			Type:  schema.FilterSelect,
			Label: "Status",
			Options: []schema.SelectOption{
				{Value: "active", Label: "Active"},
				{Value: "disabled", Label: "Disabled"},
			},
		}},
		{Key: "name", FilterConfig: schema.FilterConfig{
			Type: schema.FilterText, Label: "Name", Placeholder: "Search by name",
		}},
	}
	html := render(t, FilterBar(FilterBarProps{
		Action:  "/brokers",
		Filters: filters,
		Values:  url.Values{"status": {"active"}},
	}))

	assert.Contains(t, html, `<option value="active" selected>`)
	assert.Contains(t, html, `<option value="">All</option>`)
	assert.Contains(t, html, `placeholder="Search by name"`)
	// Filter order must follow the server config order.
	assert.Less(t, indexOf(html, "Status"), indexOf(html, "Name"))
}

func TestColumnPicker(t *testing.T) {
	html := render(t, ColumnPicker([]TableColumn{
		Column("name", "Name"),
		Column("logo", "Logo", WithHidden()),
	}))
	assert.Contains(t, html, `value="name" checked`)
	assert.Contains(t, html, `value="logo">`)
}

func indexOf(s, sub string) int {
	return bytes.Index([]byte(s), []byte(sub))
}
