package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/communityhub/goldledger/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

// PageQuery is bound from ?page=&limit=&search=.
type PageQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

func (q *PageQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.Page, validation.Min(0), validation.Max(MaxPage)),
		validation.Field(&q.Limit, validation.Min(0)),
		validation.Field(&q.Search, validation.Length(0, 100)),
	)
}

// ToDomain fills in defaults and caps the limit.
func (q *PageQuery) ToDomain() domain.PageQuery {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return domain.PageQuery{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(q.Search),
	}
}
