package mockapi

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	contacts "addressbook/internal/contacts/models"
	dErrors "addressbook/pkg/domain-errors"
)

// Account is a registered user as the backend keeps it.
type Account struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash []byte
	Disabled     bool
}

// Store holds accounts and their contacts in memory. Contact ids are unique
// across all accounts; contacts are only visible to their owner.
type Store struct {
	mu         sync.RWMutex
	accounts   map[uuid.UUID]*Account
	byEmail    map[string]uuid.UUID
	contacts   map[uuid.UUID]map[int64]contacts.Contact
	nextID     int64
	bcryptCost int
}

func NewStore() *Store {
	return &Store{
		accounts:   make(map[uuid.UUID]*Account),
		byEmail:    make(map[string]uuid.UUID),
		contacts:   make(map[uuid.UUID]map[int64]contacts.Contact),
		bcryptCost: bcrypt.DefaultCost,
	}
}

func uniqueViolation(field, value string) error {
	return dErrors.New(dErrors.CodeConflict,
		fmt.Sprintf("Field (%s) is unique and already registered with value: (%s)", field, value))
}

func notFound(objectType, field string, value any) error {
	return dErrors.New(dErrors.CodeNotFound,
		fmt.Sprintf("%s with %s of %v was not found", objectType, field, value))
}

// CreateAccount registers a new account. Emails are unique.
func (s *Store) CreateAccount(email, password, displayName string) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return Account{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[email]; taken {
		return Account{}, uniqueViolation("email", email)
	}
	acc := &Account{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	}
	s.accounts[acc.ID] = acc
	s.byEmail[email] = acc.ID
	s.contacts[acc.ID] = make(map[int64]contacts.Contact)
	return *acc, nil
}

// Authenticate checks email and password. An unknown email is not found; a
// wrong password is invalid credentials. Disabled accounts are only accepted
// when allowDisabled is set.
func (s *Store) Authenticate(email, password string, allowDisabled bool) (Account, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	var acc Account
	if ok {
		acc = *s.accounts[id]
	}
	s.mu.RUnlock()
	if !ok {
		return Account{}, notFound("User", "email", email)
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return Account{}, dErrors.New(dErrors.CodeInvalidCredentials, "Could not validate credentials")
	}
	if acc.Disabled && !allowDisabled {
		return Account{}, dErrors.New(dErrors.CodeInactiveUser, "Inactive user")
	}
	return acc, nil
}

// CheckPassword reports whether password matches the account's.
func (s *Store) CheckPassword(id uuid.UUID, password string) error {
	acc, err := s.Account(id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)) != nil {
		return dErrors.New(dErrors.CodeIncorrectPassword, "Incorrect password")
	}
	return nil
}

// Account returns the account with id.
func (s *Store) Account(id uuid.UUID) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, notFound("User", "uuid", id)
	}
	return *acc, nil
}

func (s *Store) updateAccount(id uuid.UUID, fn func(*Account)) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, notFound("User", "uuid", id)
	}
	fn(acc)
	return *acc, nil
}

func (s *Store) SetDisplayName(id uuid.UUID, name string) (Account, error) {
	return s.updateAccount(id, func(a *Account) { a.DisplayName = name })
}

func (s *Store) SetDisabled(id uuid.UUID, disabled bool) (Account, error) {
	return s.updateAccount(id, func(a *Account) { a.Disabled = disabled })
}

func (s *Store) SetPassword(id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	_, err = s.updateAccount(id, func(a *Account) { a.PasswordHash = hash })
	return err
}

// ListContacts returns the owner's contacts matching opts, sorted and paged.
func (s *Store) ListContacts(owner uuid.UUID, opts contacts.QueryOptions) (contacts.ContactsPage, error) {
	s.mu.RLock()
	all := make([]contacts.Contact, 0, len(s.contacts[owner]))
	for _, c := range s.contacts[owner] {
		all = append(all, c)
	}
	s.mu.RUnlock()

	matched, err := applyFilter(all, opts.Filter)
	if err != nil {
		return contacts.ContactsPage{}, err
	}
	applySort(matched, opts.Sort)
	return paginate(matched, opts.Pagination), nil
}

func (s *Store) GetContact(owner uuid.UUID, id int64) (contacts.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[owner][id]
	if !ok {
		return contacts.Contact{}, notFound("Contact", "id", id)
	}
	return c, nil
}

// CreateContact stores c under a fresh id. Email and phone are unique per owner.
func (s *Store) CreateContact(owner uuid.UUID, c contacts.Contact) (contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUniqueLocked(owner, c, 0); err != nil {
		return contacts.Contact{}, err
	}
	s.nextID++
	c.ID = s.nextID
	s.contacts[owner][c.ID] = c
	return c, nil
}

// UpdateContact overwrites the non-empty fields of the contact with id.
func (s *Store) UpdateContact(owner uuid.UUID, id int64, patch contacts.Contact) (contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.contacts[owner][id]
	if !ok {
		return contacts.Contact{}, notFound("Contact", "id", id)
	}
	if patch.FirstName != "" {
		current.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		current.LastName = patch.LastName
	}
	if patch.Email != "" {
		current.Email = patch.Email
	}
	if patch.Phone != "" {
		current.Phone = patch.Phone
	}
	if err := s.checkUniqueLocked(owner, current, id); err != nil {
		return contacts.Contact{}, err
	}
	s.contacts[owner][id] = current
	return current, nil
}

// DeleteContacts removes every contact in ids, or none if any is missing.
func (s *Store) DeleteContacts(owner uuid.UUID, ids []int64) ([]contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.contacts[owner]
	deleted := make([]contacts.Contact, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, ok := owned[id]
		if !ok {
			return nil, notFound("Contact", "id", id)
		}
		deleted = append(deleted, c)
	}
	for _, c := range deleted {
		delete(owned, c.ID)
	}
	return deleted, nil
}

func (s *Store) checkUniqueLocked(owner uuid.UUID, c contacts.Contact, excludeID int64) error {
	for _, id := range slices.Sorted(maps.Keys(s.contacts[owner])) {
		if id == excludeID {
			continue
		}
		existing := s.contacts[owner][id]
		if strings.EqualFold(existing.Email, c.Email) {
			return uniqueViolation(contacts.FieldEmail, c.Email)
		}
		if existing.Phone == c.Phone {
			return uniqueViolation(contacts.FieldPhone, c.Phone)
		}
	}
	return nil
}
