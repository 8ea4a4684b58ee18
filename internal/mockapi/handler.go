package mockapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	contacts "addressbook/internal/contacts/models"
	"addressbook/internal/contacts/query"
	"addressbook/internal/platform/middleware"
	session "addressbook/internal/session/models"
	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/platform/httputil"
)

// Handler serves the auth and contacts endpoints.
type Handler struct {
	store     *Store
	issuer    *TokenIssuer
	sessions  *sessionTable
	validator sessionValidator
	logger    *slog.Logger
}

func NewHandler(store *Store, issuer *TokenIssuer, logger *slog.Logger) *Handler {
	sessions := newSessionTable()
	return &Handler{
		store:     store,
		issuer:    issuer,
		sessions:  sessions,
		validator: sessionValidator{issuer: issuer, sessions: sessions},
		logger:    logger,
	}
}

// Register mounts the auth and contacts routes on r.
func (h *Handler) Register(r chi.Router) {
	requireAccess := middleware.RequireAuth(h.validator, KindAccess, h.logger)
	requireRefresh := middleware.RequireAuth(h.validator, KindRefresh, h.logger)
	requireSecurity := middleware.RequireAuth(h.validator, KindSecurity, h.logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.Post("/activate", h.HandleActivate)
		r.Post("/register", h.HandleRegister)
		r.With(requireRefresh).Get("/refresh-token", h.HandleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAccess)
			r.Get("/me", h.HandleMe)
			r.Patch("/display-name", h.HandleDisplayName)
			r.Post("/security-token", h.HandleSecurityToken)
			r.Post("/logout", h.HandleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSecurity)
			r.Patch("/change-password", h.HandleChangePassword)
			r.Post("/deactivate", h.HandleDeactivate)
		})
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Use(requireAccess)
		r.Get("/", h.HandleListContacts)
		r.Post("/", h.HandleCreateContact)
		r.Delete("/", h.HandleDeleteContacts)
		r.Get("/{id}", h.HandleGetContact)
		r.Patch("/{id}", h.HandleUpdateContact)
		r.Delete("/{id}", h.HandleDeleteContact)
	})
}

// activeAccount loads the authenticated account and rejects disabled ones.
func (h *Handler) activeAccount(ctx context.Context) (Account, error) {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return Account{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Account{}, dErrors.New(dErrors.CodeUnauthorized, "Could not validate credentials")
	}
	acc, err := h.store.Account(id)
	if err != nil {
		return Account{}, dErrors.New(dErrors.CodeUnauthorized, "Could not validate credentials")
	}
	if acc.Disabled {
		return Account{}, dErrors.New(dErrors.CodeInactiveUser, "Inactive user")
	}
	return acc, nil
}

// issuePair starts a new session for acc and returns its tokens.
func (h *Handler) issuePair(acc Account) (session.TokenResponse, error) {
	access, accessJTI, err := h.issuer.Issue(acc.ID, KindAccess)
	if err != nil {
		return session.TokenResponse{}, err
	}
	refresh, refreshJTI, err := h.issuer.Issue(acc.ID, KindRefresh)
	if err != nil {
		return session.TokenResponse{}, err
	}
	h.sessions.set(acc.ID, accessJTI, refreshJTI)
	return session.TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func userResponse(acc Account) session.UserResponse {
	return session.UserResponse{
		UUID:        acc.ID,
		Email:       acc.Email,
		DisplayName: acc.DisplayName,
		Disabled:    acc.Disabled,
	}
}

// credentials reads the OAuth2 password form used by login and activate.
func credentials(r *http.Request) (*session.LoginRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid form body")
	}
	req := &session.LoginRequest{Email: r.PostForm.Get("username"), Password: r.PostForm.Get("password")}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := credentials(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	acc, err := h.store.Authenticate(req.Email, req.Password, false)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tokens, err := h.issuePair(acc)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "user logged in", "user_id", acc.ID)
	httputil.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	req, err := credentials(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	acc, err := h.store.Authenticate(req.Email, req.Password, true)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.store.SetDisabled(acc.ID, false); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[session.RegisterRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	acc, err := h.store.CreateAccount(req.Email, req.Password, req.DisplayName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "user registered", "user_id", acc.ID)
	httputil.WriteJSON(w, http.StatusOK, userResponse(acc))
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Invalid or expired token"))
		return
	}
	acc, err := h.store.Account(id)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Invalid or expired token"))
		return
	}
	tokens, err := h.issuePair(acc)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	acc, err := h.activeAccount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponse(acc))
}

func (h *Handler) HandleDisplayName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acc, err := h.activeAccount(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[session.DisplayNameRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	acc, err = h.store.SetDisplayName(acc.ID, req.DisplayName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponse(acc))
}

func (h *Handler) HandleSecurityToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acc, err := h.activeAccount(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[session.PasswordRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if err := h.store.CheckPassword(acc.ID, req.Password); err != nil {
		httputil.WriteError(w, err)
		return
	}
	token, _, err := h.issuer.Issue(acc.ID, KindSecurity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session.SecurityTokenResponse{SecurityToken: token})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if id, err := uuid.Parse(claims.UserID); err == nil {
		h.sessions.end(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// consumeSecurityToken makes the security token on the request single use.
func (h *Handler) consumeSecurityToken(ctx context.Context) {
	if claims := middleware.GetClaims(ctx); claims != nil {
		h.issuer.RevokeToken(claims.Token, KindSecurity)
	}
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acc, err := h.activeAccount(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[session.PasswordRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	h.consumeSecurityToken(ctx)
	if err := h.store.SetPassword(acc.ID, req.Password); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acc, err := h.activeAccount(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.consumeSecurityToken(ctx)
	if _, err := h.store.SetDisabled(acc.ID, true); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.sessions.end(acc.ID)
	h.logger.InfoContext(ctx, "user deactivated", "user_id", acc.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListContacts(w http.ResponseWriter, r *http.Request) {
	acc, err := h.activeAccount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	opts, err := query.Decode(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := h.store.ListContacts(acc.ID, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := contacts.ContactsResponse{Contacts: fromContacts(page.Contacts), Total: page.Total}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetContact(w http.ResponseWriter, r *http.Request) {
	acc, id, err := h.contactTarget(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.store.GetContact(acc.ID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contacts.FromContact(c))
}

func (h *Handler) HandleCreateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acc, err := h.activeAccount(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[contacts.ContactRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	c, err := h.store.CreateContact(acc.ID, requestContact(req))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contacts.FromContact(c))
}

func (h *Handler) HandleUpdateContact(w http.ResponseWriter, r *http.Request) {
	acc, id, err := h.contactTarget(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[contacts.ContactRequest](w, r, h.logger, r.Context())
	if !ok {
		return
	}
	c, err := h.store.UpdateContact(acc.ID, id, requestContact(req))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contacts.FromContact(c))
}

func (h *Handler) HandleDeleteContact(w http.ResponseWriter, r *http.Request) {
	acc, id, err := h.contactTarget(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.deleteContacts(w, acc, []int64{id})
}

func (h *Handler) HandleDeleteContacts(w http.ResponseWriter, r *http.Request) {
	acc, err := h.activeAccount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	raw := r.URL.Query()["ids"]
	if len(raw) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "ids is required"))
		return
	}
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := parseID(s)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		ids = append(ids, id)
	}
	h.deleteContacts(w, acc, ids)
}

func (h *Handler) deleteContacts(w http.ResponseWriter, acc Account, ids []int64) {
	deleted, err := h.store.DeleteContacts(acc.ID, ids)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contacts.DeleteResponse{Contacts: fromContacts(deleted)})
}

// contactTarget resolves the account and the {id} URL parameter.
func (h *Handler) contactTarget(r *http.Request) (Account, int64, error) {
	acc, err := h.activeAccount(r.Context())
	if err != nil {
		return Account{}, 0, err
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		return Account{}, 0, err
	}
	return acc, id, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, "id must be an integer")
	}
	return id, nil
}

func requestContact(req *contacts.ContactRequest) contacts.Contact {
	return contacts.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
}

func fromContacts(cs []contacts.Contact) []contacts.ContactResponse {
	out := make([]contacts.ContactResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, contacts.FromContact(c))
	}
	return out
}
