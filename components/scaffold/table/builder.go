package table

import (
	"github.com/a-h/templ"

	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/schema"
	"github.com/propscale/broker-admin/pkg/viewstate"
)

// BuildOptions assembles a ListPage into a renderable table.
type BuildOptions struct {
	Title    string
	BasePath string
	// TriStateSort enables the third header click clearing the sort.
	TriStateSort bool
	// RowActions, when set, appends a per-row actions column.
	RowActions func(row schema.Row) templ.Component
	// ActionsLabel defaults to "Actions".
	ActionsLabel string
}

// Build derives the full table from server metadata and view state: synthetic
// row-number column first, server columns in config order, actions column
// last.
func Build(opts BuildOptions, page *crud.ListPage, state viewstate.ViewState) *TableConfig {
	cfg := NewTableConfig(opts.Title, opts.BasePath, WithFilters(FilterBar(FilterBarProps{
		Action:  opts.BasePath,
		Filters: page.Filters,
		Values:  state.Filters,
	})))

	cfg.AddColumns(Column("#", "#"))
	for _, col := range page.Columns {
		built := Column(col.Key, col.Label, WithKind(col.Type))
		if !col.Visible {
			WithHidden()(&built)
		}
		if col.Sortable {
			dir := viewstate.SortNone
			if state.OrderBy == col.Key {
				dir = state.OrderDirection
			}
			sortURL := state.ToggleSort(col.Key, opts.TriStateSort).URL(opts.BasePath)
			WithSortable(dir, sortURL)(&built)
		}
		cfg.AddColumns(built)
	}
	actionsLabel := opts.ActionsLabel
	if actionsLabel == "" {
		actionsLabel = "Actions"
	}
	if opts.RowActions != nil {
		cfg.AddColumns(Column("actions", actionsLabel))
	}

	for i, row := range page.Rows {
		cells := make([]TableCell, 0, len(page.Columns)+2)
		cells = append(cells, Cell(RowNumber(page.Pagination, i)).ForColumn("#"))
		for _, col := range page.Columns {
			cell := Cell(CellFor(col.Type, row[col.Key])).ForColumn(col.Key)
			if !col.Visible {
				cell = cell.AsHidden()
			}
			cells = append(cells, cell)
		}
		if opts.RowActions != nil {
			cells = append(cells, Cell(opts.RowActions(row)).ForColumn("actions"))
		}
		cfg.AddRows(Row(cells...).WithAttrs(templ.Attributes{"data-id": row.ID()}))
	}

	cfg.SetPagination(&PaginationProps{
		Pagination: page.Pagination,
		FirstURL:   state.WithPage(1).URL(opts.BasePath),
		PrevURL:    state.WithPage(page.Pagination.CurrentPage - 1).URL(opts.BasePath),
		NextURL:    state.WithPage(page.Pagination.CurrentPage + 1).URL(opts.BasePath),
		LastURL:    state.WithPage(page.Pagination.LastPage).URL(opts.BasePath),
	})
	return cfg
}
