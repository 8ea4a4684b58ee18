package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	contactmodels "addressbook/internal/contacts/models"
	"addressbook/internal/platform/metrics"
	sessionmodels "addressbook/internal/session/models"
	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/platform/circuit"
)

type ClientSuite struct {
	suite.Suite
	router  *chi.Mux
	server  *httptest.Server
	metrics *metrics.Metrics
	client  *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.router = chi.NewRouter()
	s.server = httptest.NewServer(s.router)
	s.metrics = metrics.New(prometheus.NewRegistry())

	client, err := New(Config{BaseURL: s.server.URL + "/api/v1/"},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
	s.client = client
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *ClientSuite) TestNewRejectsRelativeURL() {
	_, err := New(Config{BaseURL: "localhost:8000"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Equal(s.server.URL+"/api/v1", s.client.BaseURL())
}

func (s *ClientSuite) TestLoginSendsFormAndReturnsTokens() {
	s.router.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		s.Require().NoError(r.ParseForm())
		s.Equal("a@b.com", r.PostForm.Get("username"))
		s.Equal("secret1", r.PostForm.Get("password"))
		s.Empty(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "AT1", "refresh_token": "RT1", "token_type": "bearer"})
	})

	pair, err := s.client.Login(context.Background(), "a@b.com", "secret1")
	s.Require().NoError(err)
	s.Equal(sessionmodels.TokenPair{AccessToken: "AT1", RefreshToken: "RT1"}, pair)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.APIRequests.WithLabelValues("auth.login", "ok")))
}

func (s *ClientSuite) TestLoginErrorCodes() {
	var status atomic.Int64
	status.Store(http.StatusUnauthorized)
	s.router.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, int(status.Load()), map[string]string{"detail": "Invalid credentials"})
	})

	_, err := s.client.Login(context.Background(), "a@b.com", "wrong1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	s.Equal(http.StatusUnauthorized, StatusOf(err))
	s.Equal("Invalid credentials", err.Error())

	status.Store(http.StatusForbidden)
	_, err = s.client.Login(context.Background(), "a@b.com", "secret1")
	s.True(dErrors.HasCode(err, dErrors.CodeInactiveUser))
}

func (s *ClientSuite) TestMeUsesBearer() {
	id := uuid.New()
	s.router.Get("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer AT1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, sessionmodels.UserResponse{Email: "a@b.com", DisplayName: "alice", UUID: id})
	})

	user, err := s.client.Me(context.Background(), "AT1")
	s.Require().NoError(err)
	s.Equal(&sessionmodels.User{UUID: id, Email: "a@b.com", DisplayName: "alice"}, user)
}

func (s *ClientSuite) TestStatusClassification() {
	cases := []struct {
		status int
		code   dErrors.Code
	}{
		{http.StatusBadRequest, dErrors.CodeValidation},
		{http.StatusUnprocessableEntity, dErrors.CodeValidation},
		{http.StatusUnauthorized, dErrors.CodeUnauthorized},
		{http.StatusForbidden, dErrors.CodeForbidden},
		{http.StatusNotFound, dErrors.CodeNotFound},
		{http.StatusConflict, dErrors.CodeConflict},
		{http.StatusTeapot, dErrors.CodeInternal},
	}
	var status atomic.Int64
	s.router.Get("/api/v1/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, int(status.Load()), map[string]string{"detail": "nope"})
	})
	for _, tc := range cases {
		status.Store(int64(tc.status))
		_, err := s.client.GetContact(context.Background(), "AT1", 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, tc.code), "status %d -> %s", tc.status, dErrors.CodeOf(err))
		s.Equal(tc.status, StatusOf(err))
		s.Equal("nope", DetailOf(err))
	}
}

func (s *ClientSuite) TestStructuredDetailIsKept() {
	s.router.Post("/api/v1/contacts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": [{"loc": ["body", "phone"], "msg": "bad"}]}`))
	})

	_, err := s.client.CreateContact(context.Background(), "AT1", &contactmodels.ContactRequest{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(`[{"loc":["body","phone"],"msg":"bad"}]`, DetailOf(err))
}

func (s *ClientSuite) TestSecurityTokenWrongPassword() {
	s.router.Post("/api/v1/auth/security-token", func(w http.ResponseWriter, r *http.Request) {
		var body sessionmodels.PasswordRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "secret1" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Incorrect password"})
			return
		}
		writeJSON(w, http.StatusOK, sessionmodels.SecurityTokenResponse{SecurityToken: "ST1"})
	})

	_, err := s.client.SecurityToken(context.Background(), "AT1", "wrong12")
	s.True(dErrors.HasCode(err, dErrors.CodeIncorrectPassword))

	token, err := s.client.SecurityToken(context.Background(), "AT1", "secret1")
	s.Require().NoError(err)
	s.Equal("ST1", token)
}

func (s *ClientSuite) TestSensitiveCallsUseSecurityToken() {
	s.router.Patch("/api/v1/auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer ST1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})
	s.router.Post("/api/v1/auth/deactivate", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer ST2", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	s.NoError(s.client.ChangePassword(context.Background(), "ST1", "newpass1"))
	s.NoError(s.client.Deactivate(context.Background(), "ST2"))
}

func (s *ClientSuite) TestListContactsEncodesQuery() {
	s.router.Get("/api/v1/contacts", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		s.Equal("2", q.Get("page"))
		s.Equal("10", q.Get("page_size"))
		s.Equal("last_name", q.Get("sort_field"))
		s.Equal("desc", q.Get("sort_order"))
		s.Equal("email", q.Get("filter_field"))
		s.Equal("is_any_of", q.Get("filter_operator"))
		s.Equal([]string{"a@b.com", "c@d.com"}, q["filter_values"])
		writeJSON(w, http.StatusOK, contactmodels.ContactsResponse{
			Contacts: []contactmodels.ContactResponse{{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "a@b.com", Phone: "+1-555-123-456"}},
			Total:    21,
		})
	})

	page, err := s.client.ListContacts(context.Background(), "AT1", contactmodels.QueryOptions{
		Pagination: &contactmodels.Pagination{Page: 2, PageSize: 10},
		Sort:       &contactmodels.Sort{Field: "last_name", Order: contactmodels.SortDesc},
		Filter:     &contactmodels.Filter{Field: "email", Operator: "is_any_of", Values: []string{"a@b.com", "c@d.com"}},
	})
	s.Require().NoError(err)
	s.Equal(21, page.Total)
	s.Require().Len(page.Contacts, 1)
	s.Equal("Ada", page.Contacts[0].FirstName)
}

func (s *ClientSuite) TestContactMutations() {
	s.router.Post("/api/v1/contacts", func(w http.ResponseWriter, r *http.Request) {
		var body contactmodels.ContactRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal("Ada", body.FirstName)
		writeJSON(w, http.StatusOK, contactmodels.ContactResponse{ID: 9, FirstName: body.FirstName, LastName: body.LastName, Email: body.Email, Phone: body.Phone})
	})
	s.router.Patch("/api/v1/contacts/9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, contactmodels.ContactResponse{ID: 9, FirstName: "Augusta"})
	})
	s.router.Delete("/api/v1/contacts/9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, contactmodels.DeleteResponse{Contacts: []contactmodels.ContactResponse{{ID: 9}}})
	})
	s.router.Delete("/api/v1/contacts", func(w http.ResponseWriter, r *http.Request) {
		s.Equal([]string{"3", "4"}, r.URL.Query()["ids"])
		writeJSON(w, http.StatusOK, contactmodels.DeleteResponse{Contacts: []contactmodels.ContactResponse{{ID: 3}, {ID: 4}}})
	})

	ctx := context.Background()
	created, err := s.client.CreateContact(ctx, "AT1", &contactmodels.ContactRequest{FirstName: "Ada", LastName: "Lovelace", Email: "a@b.com", Phone: "+1-555-123-456"})
	s.Require().NoError(err)
	s.Equal(int64(9), created.ID)

	updated, err := s.client.UpdateContact(ctx, "AT1", 9, &contactmodels.ContactRequest{FirstName: "Augusta"})
	s.Require().NoError(err)
	s.Equal("Augusta", updated.FirstName)

	removed, err := s.client.DeleteContact(ctx, "AT1", 9)
	s.Require().NoError(err)
	s.Len(removed, 1)

	removed, err = s.client.DeleteContacts(ctx, "AT1", []int64{3, 4})
	s.Require().NoError(err)
	s.Len(removed, 2)
}

func (s *ClientSuite) TestTransportFailure() {
	s.server.Close()

	_, err := s.client.Me(context.Background(), "AT1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTransport))
	s.Equal(0, StatusOf(err))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.APIRequests.WithLabelValues("auth.me", "transport")))
}

func (s *ClientSuite) TestBreakerShortCircuits() {
	var hits atomic.Int32
	s.router.Get("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client, err := New(Config{BaseURL: s.server.URL + "/api/v1"},
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))),
	)
	s.Require().NoError(err)

	for range 2 {
		_, err = client.Me(context.Background(), "AT1")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	}
	_, err = client.Me(context.Background(), "AT1")
	s.True(dErrors.HasCode(err, dErrors.CodeTransport))
	s.True(errors.Is(err, ErrCircuitOpen))
	s.Equal(int32(2), hits.Load())
}
