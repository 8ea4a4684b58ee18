package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"

	contacts "addressbook/internal/contacts/models"
	"addressbook/internal/contacts/query"
	users "addressbook/internal/session/models"
	dErrors "addressbook/pkg/domain-errors"
)

var errUsage = errors.New("usage")

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func need(name string, values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s: missing required flag", errUsage, name)
		}
	}
	return nil
}

// run dispatches one subcommand.
func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version":
		fmt.Fprintf(a.stdout, "addressbook %s (%s)\n", version, buildDate)
		return nil
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "logged out")
		return nil
	case "whoami":
		user, err := a.session.CurrentUser(ctx)
		if err != nil {
			return err
		}
		a.printJSON(userView(user))
		return nil
	case "status":
		return a.status(ctx)
	case "display-name":
		return a.displayName(ctx, rest)
	case "verify-password":
		return a.verifyPassword(ctx, rest)
	case "passwd":
		return a.changePassword(ctx, rest)
	case "deactivate":
		if err := a.session.Deactivate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "account deactivated")
		return nil
	case "activate":
		return a.activate(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "get":
		return a.get(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "rm":
		return a.remove(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) printJSON(v any) {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func userView(u *users.User) users.UserResponse {
	return users.UserResponse{Email: u.Email, DisplayName: u.DisplayName, UUID: u.UUID, Disabled: u.Disabled}
}

// ---- account ----

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	name := fs.String("name", "", "display name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need("register", *email, *password, *name); err != nil {
		return err
	}
	user, err := a.session.Register(ctx, *email, *password, *name)
	if err != nil {
		return err
	}
	a.printJSON(userView(user))
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need("login", *email, *password); err != nil {
		return err
	}
	user, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "logged in as %s <%s>\n", user.DisplayName, user.Email)
	return nil
}

func (a *app) activate(ctx context.Context, args []string) error {
	fs := newFlagSet("activate")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need("activate", *email, *password); err != nil {
		return err
	}
	if err := a.session.Activate(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "account activated; log in again")
	return nil
}

func (a *app) displayName(ctx context.Context, args []string) error {
	fs := newFlagSet("display-name")
	name := fs.String("name", "", "display name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need("display-name", *name); err != nil {
		return err
	}
	user, err := a.session.ChangeDisplayName(ctx, *name)
	if err != nil {
		return err
	}
	a.printJSON(userView(user))
	return nil
}

func (a *app) verifyPassword(ctx context.Context, args []string) error {
	fs := newFlagSet("verify-password")
	password := fs.String("password", "", "current password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need("verify-password", *password); err != nil {
		return err
	}
	if err := a.session.VerifyPassword(ctx, *password); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "password verified; run passwd or deactivate next")
	return nil
}

func (a *app) changePassword(ctx context.Context, args []string) error {
	fs := newFlagSet("passwd")
	next := fs.String("new", "", "new password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need("passwd", *next); err != nil {
		return err
	}
	if err := a.session.ChangePassword(ctx, *next); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "password changed")
	return nil
}

type statusView struct {
	API              string     `json:"api"`
	LoggedIn         bool       `json:"logged_in"`
	AccessExpiresAt  *time.Time `json:"access_expires_at,omitempty"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
	PasswordVerified bool       `json:"password_verified"`
}

// status reports the stored tokens without contacting the backend.
func (a *app) status(ctx context.Context) error {
	t, err := a.tokens.Load(ctx)
	if err != nil {
		return err
	}
	a.printJSON(statusView{
		API:              a.cfg.APIURL,
		LoggedIn:         t.AccessToken != "" || t.RefreshToken != "",
		AccessExpiresAt:  expiry(t.AccessToken),
		RefreshExpiresAt: expiry(t.RefreshToken),
		PasswordVerified: t.SecurityToken != "",
	})
	return nil
}

// expiry reads the exp claim without verifying the signature; the CLI holds
// no signing key.
func expiry(token string) *time.Time {
	if token == "" {
		return nil
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time.UTC()
	return &exp
}

// ---- contacts ----

// gridState builds the listing state from list flags the way a grid would
// report it.
func gridState(page, size int, sort, filterField, op string, values []string) query.GridState {
	state := query.GridState{Pagination: query.PaginationModel{Page: page, PageSize: size}}
	if sort != "" {
		field, order, _ := strings.Cut(sort, ":")
		if order == "" {
			order = string(contacts.SortAsc)
		}
		state.Sort = []query.SortItem{{Field: field, Sort: order}}
	}
	if filterField != "" {
		if op == "" {
			op = contacts.OpContains
		}
		var value query.FilterValue
		switch len(values) {
		case 0:
		case 1:
			value = query.Scalar(values[0])
		default:
			value = query.Sequence(values...)
		}
		state.Filter = []query.FilterItem{{Field: filterField, Operator: op, Value: value}}
	}
	return state
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	page := fs.Int("page", 0, "page number, starting at 0")
	size := fs.Int("size", a.cfg.PageSize, "page size")
	sort := fs.String("sort", "", "sort field with optional :asc or :desc")
	filterField := fs.String("filter", "", "filter field")
	op := fs.String("op", "", "filter operator")
	var values stringList
	fs.Var(&values, "value", "filter value (repeatable)")
	if err := parse(fs, args); err != nil {
		return err
	}

	opts := query.Translate(gridState(*page, *size, *sort, *filterField, *op, values))
	result, err := a.contacts.List(ctx, opts)
	if err != nil {
		return err
	}
	resp := contacts.ContactsResponse{Contacts: make([]contacts.ContactResponse, 0, len(result.Contacts)), Total: result.Total}
	for _, c := range result.Contacts {
		resp.Contacts = append(resp.Contacts, contacts.FromContact(c))
	}
	a.printJSON(resp)
	return nil
}

func parseIDs(name string, args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %s: at least one id is required", errUsage, name)
	}
	ids := make([]int64, 0, len(args))
	for _, raw := range args {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid contact id %q", raw))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// get fetches every id concurrently and prints them in argument order.
func (a *app) get(ctx context.Context, args []string) error {
	ids, err := parseIDs("get", args)
	if err != nil {
		return err
	}
	out := make([]contacts.ContactResponse, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			c, err := a.contacts.Get(gctx, id)
			if err != nil {
				return err
			}
			out[i] = contacts.FromContact(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if len(out) == 1 {
		a.printJSON(out[0])
		return nil
	}
	a.printJSON(out)
	return nil
}

func contactFlags(fs *flag.FlagSet) (first, last, email, phone *string) {
	first = fs.String("first", "", "first name")
	last = fs.String("last", "", "last name")
	email = fs.String("email", "", "email")
	phone = fs.String("phone", "", "phone, +###-###-###-###")
	return first, last, email, phone
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	first, last, email, phone := contactFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	created, err := a.contacts.Create(ctx, contacts.Contact{
		FirstName: *first,
		LastName:  *last,
		Email:     *email,
		Phone:     *phone,
	})
	if err != nil {
		return err
	}
	a.printJSON(contacts.FromContact(created))
	return nil
}

// edit loads the contact and overlays the flags that were given.
func (a *app) edit(ctx context.Context, args []string) error {
	fs := newFlagSet("edit")
	id := fs.Int64("id", 0, "contact id")
	first, last, email, phone := contactFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: edit: -id is required", errUsage)
	}

	current, err := a.contacts.Get(ctx, *id)
	if err != nil {
		return err
	}
	overlay(&current.FirstName, *first)
	overlay(&current.LastName, *last)
	overlay(&current.Email, *email)
	overlay(&current.Phone, *phone)

	updated, err := a.contacts.Edit(ctx, current)
	if err != nil {
		return err
	}
	a.printJSON(contacts.FromContact(updated))
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (a *app) remove(ctx context.Context, args []string) error {
	ids, err := parseIDs("rm", args)
	if err != nil {
		return err
	}
	var deleted []contacts.Contact
	if len(ids) == 1 {
		deleted, err = a.contacts.Delete(ctx, ids[0])
	} else {
		deleted, err = a.contacts.DeleteMany(ctx, ids)
	}
	if err != nil {
		return err
	}
	resp := contacts.DeleteResponse{Contacts: make([]contacts.ContactResponse, 0, len(deleted))}
	for _, c := range deleted {
		resp.Contacts = append(resp.Contacts, contacts.FromContact(c))
	}
	a.printJSON(resp)
	return nil
}
