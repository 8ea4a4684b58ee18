package models

// This file contains wire response shapes. Field names are snake_case on the
// wire and converted to Go-cased models at the boundary.

// ContactResponse is a single contact as returned by the server.
type ContactResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (r ContactResponse) ToModel() Contact {
	return Contact{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
	}
}

// FromContact converts a model to its wire shape.
func FromContact(c Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}

// ContactsResponse is the listing payload.
type ContactsResponse struct {
	Contacts []ContactResponse `json:"contacts"`
	Total    int               `json:"total"`
}

func (r ContactsResponse) ToModel() ContactsPage {
	page := ContactsPage{Contacts: make([]Contact, 0, len(r.Contacts)), Total: r.Total}
	for _, c := range r.Contacts {
		page.Contacts = append(page.Contacts, c.ToModel())
	}
	return page
}

// DeleteResponse lists the contacts removed by a single delete.
type DeleteResponse struct {
	Contacts []ContactResponse `json:"contacts"`
}
