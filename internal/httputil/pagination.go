package httputil

// Pagination is the list-response envelope. From/To are 1-based inclusive
// item indices and both 0 when the result set is empty.
type Pagination struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	From        int64 `json:"from"`
	To          int64 `json:"to"`
}

// NewPagination computes the envelope for a page that was fetched with the
// given per-page size and 1-based page number.
func NewPagination(total int64, perPage, currentPage int) Pagination {
	p := Pagination{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: currentPage,
		LastPage:    1,
	}
	if total > 0 {
		p.LastPage = int((total + int64(perPage) - 1) / int64(perPage))
		from := int64(currentPage-1)*int64(perPage) + 1
		if from <= total {
			p.From = from
			to := from + int64(perPage) - 1
			if to > total {
				to = total
			}
			p.To = to
		}
	}
	return p
}

// ListResponse pairs page items with their pagination block.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}
