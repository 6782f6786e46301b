// Package session holds the authoritative in-memory session state: the
// authentication flag, the current user and the document collection.
// Every screen reads snapshots from a Store and mutates it only through the
// operations defined here. A Store is owned by the composition root and passed
// to its consumers; there is no package-level instance.
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	docdomain "docverify-portal/internal/document/domain"
	userdomain "docverify-portal/internal/user/domain"
)

// Placeholder profile fields used by Login, which receives only an email.
const (
	PlaceholderName  = "Rahul Kumar"
	PlaceholderPhone = "+91 98765 43210"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("current password does not match")
	ErrDocumentNotFound   = errors.New("document not found")
)

// Result reports whether a mutation was applied.
type Result int

const (
	// Applied means the mutation changed (or re-asserted) the session state.
	Applied Result = iota
	// RejectedNotAuthenticated means the mutation needs a user and there is none; state is unchanged.
	RejectedNotAuthenticated
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case RejectedNotAuthenticated:
		return "rejected_not_authenticated"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// PasswordHasher hashes the password supplied at login/registration so the
// password-change flow can check the current password.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hash, password string) bool
}

// Snapshot is a deep copy of the session state; mutating it does not affect the Store.
type Snapshot struct {
	IsAuthenticated bool                 `json:"isAuthenticated"`
	SessionID       string               `json:"sessionId,omitempty"`
	User            *userdomain.User     `json:"user"`
	Documents       []docdomain.Document `json:"documents"`
}

// Store is the single source of truth for one session. It is safe for
// concurrent use; mutations are applied one at a time in call order.
type Store struct {
	mu            sync.RWMutex
	authenticated bool
	sessionID     string
	user          *userdomain.User
	passwordHash  string
	documents     []docdomain.Document

	hasher            PasswordHasher
	clearDocsOnLogout bool
	newSessionID      func() string
}

// Option configures a Store.
type Option func(*Store)

// WithHasher keeps a hash of the session password. Without it no password is retained
// and ChangePassword does not check the current password.
func WithHasher(h PasswordHasher) Option {
	return func(s *Store) { s.hasher = h }
}

// WithClearDocumentsOnLogout drops the document collection on logout. By default
// documents are retained across logout and the next login.
func WithClearDocumentsOnLogout(clear bool) Option {
	return func(s *Store) { s.clearDocsOnLogout = clear }
}

// New returns an unauthenticated Store holding a copy of seed as its documents.
func New(seed []docdomain.Document, opts ...Option) *Store {
	s := &Store{
		documents:    append([]docdomain.Document(nil), seed...),
		newSessionID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login starts a session for email. No credential check is performed; the
// user gets placeholder name and phone and both verification flags false.
func (s *Store) Login(email, password string) Result {
	u := &userdomain.User{
		Name:  PlaceholderName,
		Email: email,
		Phone: PlaceholderPhone,
	}
	s.start(u, s.hashPassword(password))
	return Applied
}

// Register starts a session for a new user built from the supplied fields.
func (s *Store) Register(name, email, phone, password string) Result {
	u := &userdomain.User{
		Name:  name,
		Email: email,
		Phone: phone,
	}
	s.start(u, s.hashPassword(password))
	return Applied
}

func (s *Store) start(u *userdomain.User, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.sessionID = s.newSessionID()
	s.user = u
	s.passwordHash = hash
}

// hashPassword runs outside the lock; bcrypt is slow.
func (s *Store) hashPassword(password string) string {
	if s.hasher == nil || password == "" {
		return ""
	}
	h, err := s.hasher.Hash(password)
	if err != nil {
		log.Printf("session: password not retained: %v", err)
		return ""
	}
	return h
}

// Logout ends the session. Documents are kept unless the Store was built WithClearDocumentsOnLogout.
func (s *Store) Logout() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return RejectedNotAuthenticated
	}
	s.authenticated = false
	s.sessionID = ""
	s.user = nil
	s.passwordHash = ""
	if s.clearDocsOnLogout {
		s.documents = nil
	}
	return Applied
}

// AddDocument appends doc. The caller supplies a complete record including
// its id; duplicate ids are not detected.
func (s *Store) AddDocument(doc docdomain.Document) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, doc)
	return Applied
}

// UpdateUser shallow-merges patch onto the current user.
func (s *Store) UpdateUser(patch userdomain.UserPatch) Result {
	if patch.IsEmpty() {
		if !s.IsAuthenticated() {
			return RejectedNotAuthenticated
		}
		return Applied
	}
	return s.mutateUser(func(u userdomain.User) userdomain.User {
		return patch.Apply(u)
	})
}

// VerifyEmail marks the user's email verified. Code checking happens before this call.
func (s *Store) VerifyEmail() Result {
	return s.mutateUser(func(u userdomain.User) userdomain.User {
		u.EmailVerified = true
		return u
	})
}

// VerifyPhone marks the user's phone verified. Code checking happens before this call.
func (s *Store) VerifyPhone() Result {
	return s.mutateUser(func(u userdomain.User) userdomain.User {
		u.PhoneVerified = true
		return u
	})
}

func (s *Store) mutateUser(fn func(userdomain.User) userdomain.User) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return RejectedNotAuthenticated
	}
	next := fn(*s.user.Clone())
	s.user = &next
	return Applied
}

// ChangePassword replaces the session password. When a hash is held, current must match it.
func (s *Store) ChangePassword(current, next string) error {
	s.mu.RLock()
	authenticated, held, sessionID := s.authenticated, s.passwordHash, s.sessionID
	s.mu.RUnlock()
	if !authenticated {
		return ErrNotAuthenticated
	}
	if held != "" && s.hasher != nil && !s.hasher.Matches(held, current) {
		return ErrInvalidCredentials
	}
	hash := s.hashPassword(next)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID != sessionID {
		return ErrNotAuthenticated
	}
	s.passwordHash = hash
	return nil
}

// ApplyReview records a reviewer decision on an under-review document. It is
// the only path by which a stored document changes status.
func (s *Store) ApplyReview(id string, decision docdomain.Decision, reason string) (docdomain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.documents {
		d := &s.documents[i]
		if d.ID != id {
			continue
		}
		next, err := docdomain.Transition(d.Status, decision, reason)
		if err != nil {
			return *d, err
		}
		d.Status = next
		if next == docdomain.StatusRejected {
			d.RejectionReason = reason
		}
		return *d, nil
	}
	return docdomain.Document{}, ErrDocumentNotFound
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		IsAuthenticated: s.authenticated,
		SessionID:       s.sessionID,
		User:            s.user.Clone(),
		Documents:       append([]docdomain.Document(nil), s.documents...),
	}
}

// IsAuthenticated reports whether a user is logged in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// SessionID returns the id of the live session, or "" when logged out.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *userdomain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Documents returns the documents in insertion order.
func (s *Store) Documents() []docdomain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]docdomain.Document(nil), s.documents...)
}

// Document returns the first document with id.
func (s *Store) Document(id string) (docdomain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.documents {
		if d.ID == id {
			return d, true
		}
	}
	return docdomain.Document{}, false
}

// DocumentsByStatus returns the documents in status, in insertion order.
func (s *Store) DocumentsByStatus(status docdomain.Status) []docdomain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return docdomain.FilterByStatus(s.documents, status)
}

// StatusCounts tallies the documents by status.
func (s *Store) StatusCounts() docdomain.StatusCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return docdomain.CountByStatus(s.documents)
}
