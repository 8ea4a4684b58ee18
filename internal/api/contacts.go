package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"addressbook/internal/contacts/models"
	"addressbook/internal/contacts/query"
)

// ListContacts fetches one page of contacts matching opts.
func (c *Client) ListContacts(ctx context.Context, accessToken string, opts models.QueryOptions) (models.ContactsPage, error) {
	var resp models.ContactsResponse
	err := c.do(ctx, call{
		endpoint: "contacts.list",
		method:   http.MethodGet,
		path:     "/contacts",
		query:    query.Encode(opts),
		bearer:   accessToken,
		out:      &resp,
	})
	if err != nil {
		return models.ContactsPage{}, err
	}
	return resp.ToModel(), nil
}

// GetContact fetches a single contact by id.
func (c *Client) GetContact(ctx context.Context, accessToken string, id int64) (models.Contact, error) {
	var resp models.ContactResponse
	err := c.do(ctx, call{
		endpoint: "contacts.get",
		method:   http.MethodGet,
		path:     contactPath(id),
		bearer:   accessToken,
		out:      &resp,
	})
	if err != nil {
		return models.Contact{}, err
	}
	return resp.ToModel(), nil
}

// CreateContact creates a contact and returns it with its server-assigned id.
func (c *Client) CreateContact(ctx context.Context, accessToken string, req *models.ContactRequest) (models.Contact, error) {
	var resp models.ContactResponse
	err := c.do(ctx, call{
		endpoint: "contacts.create",
		method:   http.MethodPost,
		path:     "/contacts",
		bearer:   accessToken,
		body:     req,
		out:      &resp,
	})
	if err != nil {
		return models.Contact{}, err
	}
	return resp.ToModel(), nil
}

// UpdateContact patches the contact with id.
func (c *Client) UpdateContact(ctx context.Context, accessToken string, id int64, req *models.ContactRequest) (models.Contact, error) {
	var resp models.ContactResponse
	err := c.do(ctx, call{
		endpoint: "contacts.update",
		method:   http.MethodPatch,
		path:     contactPath(id),
		bearer:   accessToken,
		body:     req,
		out:      &resp,
	})
	if err != nil {
		return models.Contact{}, err
	}
	return resp.ToModel(), nil
}

// DeleteContact removes the contact with id and returns what was removed.
func (c *Client) DeleteContact(ctx context.Context, accessToken string, id int64) ([]models.Contact, error) {
	var resp models.DeleteResponse
	err := c.do(ctx, call{
		endpoint: "contacts.delete",
		method:   http.MethodDelete,
		path:     contactPath(id),
		bearer:   accessToken,
		out:      &resp,
	})
	if err != nil {
		return nil, err
	}
	return toContacts(resp.Contacts), nil
}

// DeleteContacts removes every contact in ids in one request.
func (c *Client) DeleteContacts(ctx context.Context, accessToken string, ids []int64) ([]models.Contact, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids", strconv.FormatInt(id, 10))
	}
	var resp models.DeleteResponse
	err := c.do(ctx, call{
		endpoint: "contacts.delete_many",
		method:   http.MethodDelete,
		path:     "/contacts",
		query:    q,
		bearer:   accessToken,
		out:      &resp,
	})
	if err != nil {
		return nil, err
	}
	return toContacts(resp.Contacts), nil
}

func contactPath(id int64) string {
	return "/contacts/" + strconv.FormatInt(id, 10)
}

func toContacts(in []models.ContactResponse) []models.Contact {
	out := make([]models.Contact, 0, len(in))
	for _, c := range in {
		out = append(out, c.ToModel())
	}
	return out
}
