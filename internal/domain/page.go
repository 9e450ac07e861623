package domain

// PageQuery is the page, page size and search term of a list request.
type PageQuery struct {
	Page   int
	Limit  int
	Search string
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(q PageQuery, total int64) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}

	return Pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		TotalCount: total,
		TotalPages: pages,
	}
}
