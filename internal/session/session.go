// Package session holds the client's authentication state and notifies
// subscribers when it changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

// Persisted keys.
const (
	KeyAccess   = "access_token"
	KeyRefresh  = "refresh_token"
	KeyUsername = "username"
	KeyUserType = "user_type"
)

var persistedKeys = []string{KeyAccess, KeyRefresh, KeyUsername, KeyUserType}

type EventKind int

const (
	EventLogin EventKind = iota + 1
	EventLogout
	EventExpired
)

func (k EventKind) String() string {
	switch k {
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	case EventExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Event describes a state transition. Session is the state after a login and
// the state before a logout or expiry.
type Event struct {
	Kind    EventKind
	Session domain.Session
}

// RedirectError asks the UI to navigate instead of showing a failure.
type RedirectError struct {
	To     string
	Reason string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s: %s", e.To, e.Reason)
}

// Session is the single active identity of a client instance.
type Session struct {
	mu      sync.RWMutex
	current domain.Session
	storage storage.Storage
	logger  *log.Logger

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func New(st storage.Storage, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{storage: st, logger: logger, subs: make(map[int]func(Event))}
}

// Restore rebuilds the state from persisted credentials. No expiry check is
// made; an expired token is discovered on the next rejected call.
func (s *Session) Restore(ctx context.Context) error {
	values := make(map[string]string, len(persistedKeys))
	for _, k := range persistedKeys {
		v, err := s.storage.Get(ctx, k)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("restore %s: %w", k, err)
		}
		values[k] = v
	}

	restored := domain.Session{
		Access:   values[KeyAccess],
		Refresh:  values[KeyRefresh],
		Username: values[KeyUsername],
		Role:     domain.ParseRole(values[KeyUserType]),
	}
	s.mu.Lock()
	if restored.Valid() {
		s.current = restored
	} else {
		s.current = domain.Session{}
	}
	s.mu.Unlock()
	return nil
}

// Begin records a successful login.
func (s *Session) Begin(ctx context.Context, sess domain.Session) error {
	if !sess.Valid() {
		return errors.New("access token required")
	}
	if sess.Role == "" {
		sess.Role = domain.RoleCustomer
	}
	values := map[string]string{
		KeyAccess:   sess.Access,
		KeyRefresh:  sess.Refresh,
		KeyUsername: sess.Username,
		KeyUserType: string(sess.Role),
	}
	for _, k := range persistedKeys {
		if err := s.storage.Set(ctx, k, values[k]); err != nil {
			return fmt.Errorf("persist %s: %w", k, err)
		}
	}
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	s.logger.Printf("session: login username=%s role=%s", sess.Username, sess.Role)
	s.publish(Event{Kind: EventLogin, Session: sess})
	return nil
}

// End is an explicit logout.
func (s *Session) End(ctx context.Context) error {
	return s.drop(ctx, EventLogout)
}

// Expire drops the session after the server rejected its credential. Only
// the first call for a given session emits EventExpired.
func (s *Session) Expire(ctx context.Context) error {
	return s.drop(ctx, EventExpired)
}

func (s *Session) drop(ctx context.Context, kind EventKind) error {
	s.mu.Lock()
	prev := s.current
	s.current = domain.Session{}
	s.mu.Unlock()

	var firstErr error
	for _, k := range persistedKeys {
		if err := s.storage.Delete(ctx, k); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("clear %s: %w", k, err)
		}
	}
	if !prev.Valid() {
		return firstErr
	}
	s.logger.Printf("session: %s username=%s", kind, prev.Username)
	s.publish(Event{Kind: kind, Session: prev})
	return firstErr
}

// Current returns a copy of the active session; the zero value means anonymous.
func (s *Session) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Session) Authenticated() bool {
	return s.Current().Valid()
}

// AccessToken is the credential attached to remote calls.
func (s *Session) AccessToken() string {
	return s.Current().Access
}

// RequireSeller gates seller-only operations.
func (s *Session) RequireSeller() error {
	cur := s.Current()
	switch {
	case !cur.Valid():
		return &RedirectError{To: "/login", Reason: "Please login to access the seller dashboard"}
	case cur.Role != domain.RoleSeller:
		return &RedirectError{To: "/", Reason: "Access denied. Seller account required."}
	default:
		return nil
	}
}

// Subscribe registers fn for every transition and returns a function that
// removes it. Callbacks run synchronously on the goroutine that changed state.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Session) publish(ev Event) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
