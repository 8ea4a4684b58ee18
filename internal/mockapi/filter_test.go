package mockapi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contacts "addressbook/internal/contacts/models"
	dErrors "addressbook/pkg/domain-errors"
)

func fixture() []contacts.Contact {
	return []contacts.Contact{
		{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Phone: "+1-555-000-001"},
		{ID: 2, FirstName: "Bob", LastName: "Stone", Email: "bob@work.org", Phone: "+1-555-000-002"},
		{ID: 3, FirstName: "Annabel", LastName: "Young", Email: "annabel@example.com", Phone: "+44-555-000-003"},
		{ID: 10, FirstName: "Carl", LastName: "Lee", Email: "carl@work.org", Phone: "+1-555-000-010"},
	}
}

func ids(cs []contacts.Contact) []int64 {
	out := make([]int64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestApplyFilter(t *testing.T) {
	cases := []struct {
		name   string
		filter *contacts.Filter
		want   []int64
	}{
		{"nil filter keeps all", nil, []int64{1, 2, 3, 10}},
		{"contains needs every value", &contacts.Filter{Field: "first_name", Operator: "contains", Values: []string{"ann", "bel"}}, []int64{3}},
		{"contains is case insensitive", &contacts.Filter{Field: "email", Operator: "contains", Values: []string{"WORK"}}, []int64{2, 10}},
		{"starts_with", &contacts.Filter{Field: "phone", Operator: "starts_with", Values: []string{"+44"}}, []int64{3}},
		{"ends_with", &contacts.Filter{Field: "email", Operator: "ends_with", Values: []string{".org"}}, []int64{2, 10}},
		{"equals is exact", &contacts.Filter{Field: "last_name", Operator: "equals", Values: []string{"Lee"}}, []int64{1, 10}},
		{"is_any_of", &contacts.Filter{Field: "first_name", Operator: "is_any_of", Values: []string{"Bob", "Carl", "Zed"}}, []int64{2, 10}},
		{"is_not_empty", &contacts.Filter{Field: "email", Operator: "is_not_empty", Values: []string{""}}, []int64{1, 2, 3, 10}},
		{"is_empty", &contacts.Filter{Field: "email", Operator: "is_empty", Values: []string{""}}, []int64{}},
		{"id compares numerically", &contacts.Filter{Field: "id", Operator: ">", Values: []string{"2"}}, []int64{3, 10}},
		{"id not equal", &contacts.Filter{Field: "id", Operator: "!=", Values: []string{"10"}}, []int64{1, 2, 3}},
		{"text comparison", &contacts.Filter{Field: "first_name", Operator: "<=", Values: []string{"Annabel"}}, []int64{1, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := applyFilter(fixture(), tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}

	t.Run("non-integer id operand", func(t *testing.T) {
		_, err := applyFilter(fixture(), &contacts.Filter{Field: "id", Operator: "<", Values: []string{"x"}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestApplySort(t *testing.T) {
	cs := fixture()
	applySort(cs, nil)
	assert.Equal(t, []int64{1, 2, 3, 10}, ids(cs))

	applySort(cs, &contacts.Sort{Field: "last_name", Order: contacts.SortDesc})
	assert.Equal(t, []int64{3, 2, 1, 10}, ids(cs), "ties keep id order")

	applySort(cs, &contacts.Sort{Field: "id", Order: contacts.SortDesc})
	assert.Equal(t, []int64{10, 3, 2, 1}, ids(cs))

	applySort(cs, &contacts.Sort{Field: "first_name"})
	assert.Equal(t, []int64{1, 3, 2, 10}, ids(cs))
}

func TestPaginate(t *testing.T) {
	page := paginate(fixture(), &contacts.Pagination{Page: 1, PageSize: 3})
	assert.Equal(t, []int64{10}, ids(page.Contacts))
	assert.Equal(t, 4, page.Total)

	page = paginate(fixture(), &contacts.Pagination{Page: 5, PageSize: 3})
	assert.Empty(t, page.Contacts)
	assert.Equal(t, 4, page.Total)

	page = paginate(fixture(), nil)
	assert.Len(t, page.Contacts, 4)

	page = paginate(fixture(), &contacts.Pagination{Page: math.MaxInt, PageSize: 2})
	assert.Empty(t, page.Contacts)
	assert.Equal(t, 4, page.Total)

	page = paginate(fixture(), &contacts.Pagination{Page: 1, PageSize: math.MaxInt})
	assert.Empty(t, page.Contacts)

	page = paginate(fixture(), &contacts.Pagination{Page: 0, PageSize: math.MaxInt})
	assert.Len(t, page.Contacts, 4)
}
