package schema

// Pagination mirrors the platform list envelope's pagination block.
// Invariant: CurrentPage ∈ [1, LastPage]; From/To bound the page's row range
// within Total.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// Range computes the displayed "Showing From to To of Total" bounds for a
// page. For an empty result set both bounds are zero.
func Range(page, perPage, total int) (from, to int) {
	if total <= 0 || page < 1 || perPage < 1 {
		return 0, 0
	}
	from = (page-1)*perPage + 1
	if from > total {
		return 0, 0
	}
	to = page * perPage
	if to > total {
		to = total
	}
	return from, to
}

// NewPagination derives a consistent pagination block locally. Used when the
// platform omits one (some legacy endpoints) and by tests.
func NewPagination(page, perPage, total int) Pagination {
	if perPage < 1 {
		perPage = 1
	}
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}
	from, to := Range(page, perPage, total)
	return Pagination{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
		From:        from,
		To:          to,
	}
}

func (p Pagination) HasPrev() bool {
	return p.CurrentPage > 1
}

func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.LastPage
}
