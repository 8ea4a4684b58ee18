// Package query turns grid filter, sort and pagination state into the
// listing endpoint's flat snake_case query contract.
//
// Every function here is pure: the same input always yields the same output
// and translating an already translated value changes nothing.
package query

import (
	"strings"

	"addressbook/internal/contacts/models"
	s "addressbook/pkg/string"
)

// DefaultPageSize is used when the grid has not reported a usable page size.
const DefaultPageSize = 10

// TranslateFilter maps the first filter item to a Filter. It returns nil when
// there is no item, no field or no value, so "no filter" stays distinct from
// an empty one.
func TranslateFilter(items []FilterItem) *models.Filter {
	if len(items) == 0 {
		return nil
	}
	item := items[0]
	field := s.ToSnakeCase(item.Field)
	if field == "" || item.Value.IsEmpty() {
		return nil
	}
	return &models.Filter{
		Field:    field,
		Operator: translateOperator(item.Operator),
		Values:   item.Value.Values(),
	}
}

// Symbolic operators such as "=" or "!=" must not go through case conversion.
func translateOperator(op string) string {
	op = strings.TrimSpace(op)
	if !s.IsWordLike(op) {
		return op
	}
	return s.ToSnakeCase(op)
}

// TranslateSort maps the first sort item to a Sort, or nil when no column is
// chosen. Directions other than asc/desc become the empty (null) order.
func TranslateSort(items []SortItem) *models.Sort {
	if len(items) == 0 {
		return nil
	}
	field := s.ToSnakeCase(items[0].Field)
	if field == "" {
		return nil
	}
	return &models.Sort{Field: field, Order: translateOrder(items[0].Sort)}
}

func translateOrder(order string) models.SortOrder {
	switch models.SortOrder(strings.ToLower(strings.TrimSpace(order))) {
	case models.SortAsc:
		return models.SortAsc
	case models.SortDesc:
		return models.SortDesc
	default:
		return ""
	}
}

// TranslatePagination clamps the page window: negative pages become 0 and
// non-positive sizes fall back to DefaultPageSize.
func TranslatePagination(m PaginationModel) models.Pagination {
	p := models.Pagination{Page: m.Page, PageSize: m.PageSize}
	if p.Page < 0 {
		p.Page = 0
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Translate builds QueryOptions from a full grid state. Pagination is always
// present.
func Translate(state GridState) models.QueryOptions {
	p := TranslatePagination(state.Pagination)
	return models.QueryOptions{
		Pagination: &p,
		Sort:       TranslateSort(state.Sort),
		Filter:     TranslateFilter(state.Filter),
	}
}

// SetFilter returns a copy of prev with its filter replaced.
func SetFilter(prev models.QueryOptions, items []FilterItem) models.QueryOptions {
	next := Clone(prev)
	next.Filter = TranslateFilter(items)
	return next
}

// SetSort returns a copy of prev with its sort replaced.
func SetSort(prev models.QueryOptions, items []SortItem) models.QueryOptions {
	next := Clone(prev)
	next.Sort = TranslateSort(items)
	return next
}

// SetPagination returns a copy of prev with its page window replaced.
func SetPagination(prev models.QueryOptions, m PaginationModel) models.QueryOptions {
	next := Clone(prev)
	p := TranslatePagination(m)
	next.Pagination = &p
	return next
}

// Clone deep-copies opts so callers can derive new options without aliasing.
func Clone(opts models.QueryOptions) models.QueryOptions {
	var out models.QueryOptions
	if opts.Pagination != nil {
		p := *opts.Pagination
		out.Pagination = &p
	}
	if opts.Sort != nil {
		srt := *opts.Sort
		out.Sort = &srt
	}
	if opts.Filter != nil {
		f := *opts.Filter
		f.Values = append([]string(nil), opts.Filter.Values...)
		out.Filter = &f
	}
	return out
}
