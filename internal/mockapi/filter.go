package mockapi

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	contacts "addressbook/internal/contacts/models"
	dErrors "addressbook/pkg/domain-errors"
)

// DefaultPageSize applies when a listing request carries no pagination.
const DefaultPageSize = 20

// fieldValue reads a contact column by its wire name.
func fieldValue(c contacts.Contact, field string) string {
	switch field {
	case contacts.FieldID:
		return strconv.FormatInt(c.ID, 10)
	case contacts.FieldFirstName:
		return c.FirstName
	case contacts.FieldLastName:
		return c.LastName
	case contacts.FieldEmail:
		return c.Email
	case contacts.FieldPhone:
		return c.Phone
	}
	return ""
}

// compareField orders a and b by field; ids compare numerically.
func compareField(a, b contacts.Contact, field string) int {
	if field == contacts.FieldID {
		return cmp.Compare(a.ID, b.ID)
	}
	return strings.Compare(fieldValue(a, field), fieldValue(b, field))
}

// compareValue compares a contact's column to a filter operand. For ids
// the operand must be an integer.
func compareValue(c contacts.Contact, field, operand string) (int, error) {
	if field == contacts.FieldID {
		n, err := strconv.ParseInt(operand, 10, 64)
		if err != nil {
			return 0, dErrors.New(dErrors.CodeValidation, "filter_values must be integers when filtering by id")
		}
		return cmp.Compare(c.ID, n), nil
	}
	return strings.Compare(fieldValue(c, field), operand), nil
}

// matches applies one filter to one contact. Text operators are case
// insensitive; contains requires every value, is_any_of any value, and the
// remaining operators use the first value.
func matches(c contacts.Contact, f *contacts.Filter) (bool, error) {
	value := fieldValue(c, f.Field)
	lower := strings.ToLower(value)
	first := f.Values[0]

	switch f.Operator {
	case contacts.OpContains:
		for _, v := range f.Values {
			if !strings.Contains(lower, strings.ToLower(v)) {
				return false, nil
			}
		}
		return true, nil
	case contacts.OpStartsWith:
		return strings.HasPrefix(lower, strings.ToLower(first)), nil
	case contacts.OpEndsWith:
		return strings.HasSuffix(lower, strings.ToLower(first)), nil
	case contacts.OpEquals:
		return value == first, nil
	case contacts.OpIsAnyOf:
		return slices.Contains(f.Values, value), nil
	case contacts.OpIsEmpty:
		return value == "", nil
	case contacts.OpIsNotEmpty:
		return value != "", nil
	}

	n, err := compareValue(c, f.Field, first)
	if err != nil {
		return false, err
	}
	switch f.Operator {
	case contacts.OpEq:
		return n == 0, nil
	case contacts.OpNe:
		return n != 0, nil
	case contacts.OpLt:
		return n < 0, nil
	case contacts.OpLe:
		return n <= 0, nil
	case contacts.OpGt:
		return n > 0, nil
	case contacts.OpGe:
		return n >= 0, nil
	}
	return false, dErrors.New(dErrors.CodeValidation, "filter_operator is not supported")
}

func applyFilter(all []contacts.Contact, f *contacts.Filter) ([]contacts.Contact, error) {
	if f == nil || len(f.Values) == 0 {
		return all, nil
	}
	out := all[:0:0]
	for _, c := range all {
		ok, err := matches(c, f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// applySort orders in place; without a sort, or as a tie-breaker, by id.
func applySort(cs []contacts.Contact, s *contacts.Sort) {
	field, desc := contacts.FieldID, false
	if s != nil && s.Field != "" {
		field, desc = s.Field, s.Order == contacts.SortDesc
	}
	slices.SortStableFunc(cs, func(a, b contacts.Contact) int {
		n := compareField(a, b, field)
		if desc {
			n = -n
		}
		if n == 0 {
			n = cmp.Compare(a.ID, b.ID)
		}
		return n
	})
}

func paginate(cs []contacts.Contact, p *contacts.Pagination) contacts.ContactsPage {
	page, size := 0, DefaultPageSize
	if p != nil {
		page, size = p.Page, p.PageSize
	}
	total := len(cs)
	if size <= 0 {
		size = DefaultPageSize
	}
	// page past the end: compare by division so page*size cannot overflow.
	start := total
	if page >= 0 && page <= total/size {
		start = min(page*size, total)
	}
	end := total
	if size < total-start {
		end = start + size
	}
	return contacts.ContactsPage{Contacts: cs[start:end], Total: total}
}
