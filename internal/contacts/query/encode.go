package query

import (
	"net/url"
	"strconv"

	"addressbook/internal/contacts/models"
	dErrors "addressbook/pkg/domain-errors"
)

// Query parameter names of the listing endpoint.
const (
	ParamPage           = "page"
	ParamPageSize       = "page_size"
	ParamSortField      = "sort_field"
	ParamSortOrder      = "sort_order"
	ParamFilterField    = "filter_field"
	ParamFilterOperator = "filter_operator"
	ParamFilterValues   = "filter_values"
)

// Encode flattens opts into listing query parameters. Absent parts emit
// nothing; filter values are repeated. The result's Encode() is stable and
// serves as the listing cache key.
func Encode(opts models.QueryOptions) url.Values {
	v := url.Values{}
	if p := opts.Pagination; p != nil {
		v.Set(ParamPage, strconv.Itoa(p.Page))
		v.Set(ParamPageSize, strconv.Itoa(p.PageSize))
	}
	if srt := opts.Sort; srt != nil {
		v.Set(ParamSortField, srt.Field)
		if srt.Order != "" {
			v.Set(ParamSortOrder, string(srt.Order))
		}
	}
	if f := opts.Filter; f != nil {
		v.Set(ParamFilterField, f.Field)
		if f.Operator != "" {
			v.Set(ParamFilterOperator, f.Operator)
		}
		for _, value := range f.Values {
			v.Add(ParamFilterValues, value)
		}
	}
	return v
}

// Decode parses listing query parameters back into QueryOptions and checks
// them against the backend contract. Missing parts stay nil.
func Decode(v url.Values) (models.QueryOptions, error) {
	var opts models.QueryOptions

	if v.Has(ParamPage) || v.Has(ParamPageSize) {
		p := models.Pagination{Page: 0, PageSize: DefaultPageSize}
		if raw := v.Get(ParamPage); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return opts, dErrors.New(dErrors.CodeValidation, "page must be a non-negative integer")
			}
			p.Page = n
		}
		if raw := v.Get(ParamPageSize); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return opts, dErrors.New(dErrors.CodeValidation, "page_size must be a positive integer")
			}
			p.PageSize = n
		}
		opts.Pagination = &p
	}

	if field := v.Get(ParamSortField); field != "" {
		if !models.IsContactField(field) {
			return opts, dErrors.New(dErrors.CodeValidation, "sort_field must be a contact field")
		}
		order := models.SortOrder(v.Get(ParamSortOrder))
		if order != "" && order != models.SortAsc && order != models.SortDesc {
			return opts, dErrors.New(dErrors.CodeValidation, "sort_order must be one of [asc desc]")
		}
		opts.Sort = &models.Sort{Field: field, Order: order}
	}

	if field := v.Get(ParamFilterField); field != "" {
		if !models.IsContactField(field) {
			return opts, dErrors.New(dErrors.CodeValidation, "filter_field must be a contact field")
		}
		op := v.Get(ParamFilterOperator)
		if op == "" {
			op = models.OpContains
		}
		if !models.IsFilterOperator(op) {
			return opts, dErrors.New(dErrors.CodeValidation, "filter_operator is not supported")
		}
		values := v[ParamFilterValues]
		if len(values) > 0 {
			opts.Filter = &models.Filter{Field: field, Operator: op, Values: append([]string(nil), values...)}
		}
	}
	return opts, nil
}
