package query

import (
	"bytes"
	"encoding/json"
	"slices"

	dErrors "addressbook/pkg/domain-errors"
)

// PaginationModel is the page window as the grid reports it.
type PaginationModel struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// SortItem is one entry of the grid's sort model.
type SortItem struct {
	Field string `json:"field"`
	Sort  string `json:"sort"`
}

// FilterItem is one entry of the grid's filter model. Field and Operator are
// in the grid's casing (camelCase field names, operator tokens such as
// "startsWith" or "!=").
type FilterItem struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    FilterValue `json:"value"`
}

// GridState is the full grid state used to build a listing query.
type GridState struct {
	Pagination PaginationModel `json:"paginationModel"`
	Sort       []SortItem      `json:"sortModel"`
	Filter     []FilterItem    `json:"filterModel"`
}

// FilterValue holds either a single value or a sequence of values, matching
// grid operators that take one operand ("contains") or many ("isAnyOf").
type FilterValue struct {
	scalar   string
	values   []string
	sequence bool
}

// Scalar returns a single-valued FilterValue.
func Scalar(v string) FilterValue {
	return FilterValue{scalar: v}
}

// Sequence returns a multi-valued FilterValue.
func Sequence(vs ...string) FilterValue {
	return FilterValue{values: slices.Clone(vs), sequence: true}
}

// IsSequence reports whether the value was supplied as a sequence.
func (v FilterValue) IsSequence() bool {
	return v.sequence
}

// IsEmpty reports whether no usable value was supplied: an empty scalar or an
// empty sequence.
func (v FilterValue) IsEmpty() bool {
	if v.sequence {
		return len(v.values) == 0
	}
	return v.scalar == ""
}

// Values returns the value in sequence shape. A scalar becomes a one-element
// slice; a sequence is copied unchanged. Empty values yield nil.
func (v FilterValue) Values() []string {
	if v.IsEmpty() {
		return nil
	}
	if v.sequence {
		return slices.Clone(v.values)
	}
	return []string{v.scalar}
}

// UnmarshalJSON accepts a JSON string, a JSON array of strings or null.
func (v *FilterValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = FilterValue{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, "filter value must be a string or a list of strings")
		}
		*v = FilterValue{values: vs, sequence: true}
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, "filter value must be a string or a list of strings")
		}
		*v = FilterValue{scalar: s}
		return nil
	}
}

func (v FilterValue) MarshalJSON() ([]byte, error) {
	if v.sequence {
		if v.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.values)
	}
	return json.Marshal(v.scalar)
}
