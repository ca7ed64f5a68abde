package composables

import (
	"net/http"
	"strconv"

	"github.com/propscale/broker-admin/pkg/configuration"
)

type PaginationParams struct {
	Page    int
	PerPage int
	Offset  int
}

// UsePaginated reads page/per_page from the URL query, clamping both into
// valid bounds. Page numbering is 1-based.
func UsePaginated(r *http.Request) PaginationParams {
	conf := configuration.Use()

	page := 1
	if raw := GetLastQueryParam(r, "page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	perPage := conf.PageSize
	if raw := GetLastQueryParam(r, "per_page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			perPage = parsed
		}
	}
	if perPage > conf.MaxPageSize {
		perPage = conf.MaxPageSize
	}

	return PaginationParams{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}
