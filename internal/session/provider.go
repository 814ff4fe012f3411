package session

import (
	"context"
	"sync"
	"time"

	"github.com/Togather-Foundation/gala/internal/auth"
)

type EventKind string

const (
	EventInitialSession EventKind = "initial_session"
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is a session-change notification. Session is nil after sign-out.
type Event struct {
	Kind    EventKind
	Session *Session
}

// Provider is the identity service a Resolver follows.
type Provider interface {
	CurrentSession(ctx context.Context) (*Session, error)
	// OnSessionChange registers fn for every subsequent change and returns
	// a function that removes it.
	OnSessionChange(fn func(Event)) (unsubscribe func())
	SignInWithPassword(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
}

// RoleLookup returns the role stored on a user's profile.
type RoleLookup interface {
	LookupRole(ctx context.Context, userID string) (string, error)
}

type RoleLookupFunc func(ctx context.Context, userID string) (string, error)

func (f RoleLookupFunc) LookupRole(ctx context.Context, userID string) (string, error) {
	return f(ctx, userID)
}

// PasswordProvider is a Provider for a single client, backed by an
// auth.Authenticator. It holds at most one session.
type PasswordProvider struct {
	auth *auth.Authenticator
	now  func() time.Time

	mu        sync.Mutex
	current   *Session
	listeners []listener
	nextID    uint64
}

type listener struct {
	id uint64
	fn func(Event)
}

func NewPasswordProvider(authenticator *auth.Authenticator) *PasswordProvider {
	return &PasswordProvider{auth: authenticator, now: time.Now}
}

func (p *PasswordProvider) CurrentSession(_ context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, nil
	}
	if !p.current.ExpiresAt.IsZero() && !p.now().Before(p.current.ExpiresAt) {
		p.current = nil
		return nil, nil
	}
	sess := *p.current
	return &sess, nil
}

func (p *PasswordProvider) OnSessionChange(fn func(Event)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners = append(p.listeners, listener{id: id, fn: fn})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, l := range p.listeners {
				if l.id == id {
					p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (p *PasswordProvider) SignInWithPassword(ctx context.Context, email, password string) error {
	identity, err := p.auth.Authenticate(ctx, email, password)
	if err != nil {
		return err
	}
	p.set(sessionFromIdentity(identity), EventSignedIn)
	return nil
}

func (p *PasswordProvider) SignOut(_ context.Context) error {
	p.set(nil, EventSignedOut)
	return nil
}

// Restore adopts an existing token, e.g. one persisted by a CLI between
// runs.
func (p *PasswordProvider) Restore(token string) error {
	identity, err := p.auth.Verify(token)
	if err != nil {
		return err
	}
	p.set(sessionFromIdentity(identity), EventInitialSession)
	return nil
}

// Refresh re-issues the current token.
func (p *PasswordProvider) Refresh(ctx context.Context) error {
	current, err := p.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNoSession
	}
	identity, err := p.auth.Reissue(auth.Identity{UserID: current.User.ID, Email: current.User.Email})
	if err != nil {
		return err
	}
	p.set(sessionFromIdentity(identity), EventTokenRefreshed)
	return nil
}

// set swaps the session and notifies listeners outside the lock.
func (p *PasswordProvider) set(sess *Session, kind EventKind) {
	p.mu.Lock()
	p.current = sess
	listeners := make([]listener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, l := range listeners {
		ev := Event{Kind: kind}
		if sess != nil {
			clone := *sess
			ev.Session = &clone
		}
		l.fn(ev)
	}
}

func sessionFromIdentity(identity auth.Identity) *Session {
	return &Session{
		User:      User{ID: identity.UserID, Email: identity.Email},
		Token:     identity.Token,
		ExpiresAt: identity.ExpiresAt,
	}
}
