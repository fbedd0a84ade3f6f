// Package session holds the authentication state of each browser context and
// notifies observers when it flips.
package session

import (
	"context"
	"fmt"
	"sync"

	apperrors "holidaze/internal/errors"
	"holidaze/internal/models"
)

// Observer receives the new authenticated value
type Observer func(authenticated bool)

// changeHook is told about every transition; local is false when the change
// was picked up from the store rather than made through this Session.
type changeHook func(s *Session, authenticated, local bool)

// Session is the auth state of one browser context. Observers run
// synchronously, after the state is updated and before the mutating call
// returns. An observer must not call Login, Logout or Refresh on the same Session.
type Session struct {
	id    string
	store Store
	hook  changeHook

	// serializes transitions so observers see them in order
	changeMu sync.Mutex

	mu            sync.RWMutex
	authenticated bool
	creds         models.Credentials
	observers     []observer
	nextObserver  int
}

type observer struct {
	id int
	fn Observer
}

// New reads the store once to initialise the authenticated flag
func New(ctx context.Context, id string, store Store) (*Session, error) {
	creds, ok, err := store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s := &Session{
		id:    id,
		store: store,
	}
	if ok {
		s.authenticated = true
		s.creds = creds
	}
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Credentials returns the stored token and profile name; ok is false when logged out
func (s *Session) Credentials() (models.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, s.authenticated
}

// Subscribe registers fn and returns a func that removes it. Observers are
// called in registration order.
func (s *Session) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Observers reports how many observers are registered
func (s *Session) Observers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Login stores creds and marks the session authenticated
func (s *Session) Login(ctx context.Context, creds models.Credentials) error {
	if !creds.Valid() {
		return apperrors.Validation("accessToken", "Login response did not include an access token.")
	}

	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	if err := s.store.Save(ctx, s.id, creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	s.apply(creds, true, true)
	return nil
}

// Logout clears the store first and only then tells observers
func (s *Session) Logout(ctx context.Context) error {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	if err := s.store.Clear(ctx, s.id); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	s.apply(models.Credentials{}, false, true)
	return nil
}

// Refresh re-reads the store after it was changed elsewhere
func (s *Session) Refresh(ctx context.Context) error {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	creds, ok, err := s.store.Load(ctx, s.id)
	if err != nil {
		return fmt.Errorf("failed to reload session: %w", err)
	}
	if !ok {
		creds = models.Credentials{}
	}
	s.apply(creds, ok, false)
	return nil
}

// apply must be called with changeMu held
func (s *Session) apply(creds models.Credentials, authenticated, local bool) {
	s.mu.Lock()
	changed := s.authenticated != authenticated
	s.authenticated = authenticated
	s.creds = creds
	var observers []Observer
	if changed {
		observers = make([]Observer, 0, len(s.observers))
		for _, o := range s.observers {
			observers = append(observers, o.fn)
		}
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range observers {
		fn(authenticated)
	}
	if s.hook != nil {
		s.hook(s, authenticated, local)
	}
}
