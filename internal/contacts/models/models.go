package models

// This file contains the in-memory contact shapes used by the SDK. Wire
// representations live in requests.go and responses.go.

// Contact is a single address-book entry. ID is assigned by the server;
// a zero ID marks a contact that has not been created yet.
type Contact struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// IsNew reports whether the contact has not been persisted yet.
func (c Contact) IsNew() bool {
	return c.ID == 0
}

// ContactsPage is one page of a listing. Total is the number of contacts
// matching the query across all pages.
type ContactsPage struct {
	Contacts []Contact
	Total    int
}

// SortOrder is the direction of a sort. The empty value means no direction
// was chosen and the server default applies.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Pagination is a zero-indexed page window.
type Pagination struct {
	Page     int
	PageSize int
}

// Sort is a single-column sort descriptor.
type Sort struct {
	Field string
	Order SortOrder
}

// Filter is the one active filter. Values always has sequence shape, even
// when the user supplied a single value.
type Filter struct {
	Field    string
	Operator string
	Values   []string
}

// QueryOptions is the normalized listing request. Each part is optional;
// a nil Filter means "no filter", which is distinct from an empty one.
type QueryOptions struct {
	Pagination *Pagination
	Sort       *Sort
	Filter     *Filter
}

// Contact fields accepted by the listing endpoint for sorting and filtering.
const (
	FieldID        = "id"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPhone     = "phone"
)

// Filter operators understood by the listing endpoint.
const (
	OpEq         = "="
	OpNe         = "!="
	OpLt         = "<"
	OpGt         = ">"
	OpLe         = "<="
	OpGe         = ">="
	OpContains   = "contains"
	OpEquals     = "equals"
	OpStartsWith = "starts_with"
	OpEndsWith   = "ends_with"
	OpIsEmpty    = "is_empty"
	OpIsNotEmpty = "is_not_empty"
	OpIsAnyOf    = "is_any_of"
)

// IsContactField reports whether field names a sortable/filterable column.
func IsContactField(field string) bool {
	switch field {
	case FieldID, FieldFirstName, FieldLastName, FieldEmail, FieldPhone:
		return true
	}
	return false
}

// IsFilterOperator reports whether op is an operator the backend accepts.
func IsFilterOperator(op string) bool {
	switch op {
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe,
		OpContains, OpEquals, OpStartsWith, OpEndsWith,
		OpIsEmpty, OpIsNotEmpty, OpIsAnyOf:
		return true
	}
	return false
}
