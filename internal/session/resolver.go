package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Togather-Foundation/gala/internal/auth"
	"github.com/Togather-Foundation/gala/internal/metrics"
	"github.com/rs/zerolog"
)

type Options struct {
	// RoleLookupTimeout bounds each role lookup. Defaults to
	// DefaultRoleLookupTimeout.
	RoleLookupTimeout time.Duration
	// AdminRole is the profile role that grants admin. Defaults to "admin".
	AdminRole string
	Logger    zerolog.Logger
}

// Resolver owns the session state for one client. It is safe for
// concurrent use; consumers only read through State or Subscribe.
type Resolver struct {
	provider  Provider
	roles     RoleLookup
	timeout   time.Duration
	adminRole string
	logger    zerolog.Logger

	mu          sync.Mutex
	state       State
	generation  uint64
	notified    uint64
	subscribers map[uint64]chan State
	nextSub     uint64
	unsubscribe func()
	started     bool
	closed      bool

	// ctx bounds in-flight role lookups; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewResolver(provider Provider, roles RoleLookup, opts Options) *Resolver {
	if opts.RoleLookupTimeout <= 0 {
		opts.RoleLookupTimeout = DefaultRoleLookupTimeout
	}
	if opts.AdminRole == "" {
		opts.AdminRole = auth.DefaultAdminRole
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		provider:    provider,
		roles:       roles,
		timeout:     opts.RoleLookupTimeout,
		adminRole:   opts.AdminRole,
		logger:      opts.Logger.With().Str("component", "session").Logger(),
		state:       State{Status: StatusNone, adminRole: opts.AdminRole},
		subscribers: make(map[uint64]chan State),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start subscribes to session changes and then applies the provider's
// current session. If a change notification lands while the current
// session is being fetched, the notification wins and the fetched value is
// dropped. Calling Start twice is a no-op.
func (r *Resolver) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrResolverClosed
	}
	if r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	r.mu.Unlock()

	unsubscribe := r.provider.OnSessionChange(r.handleEvent)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		unsubscribe()
		return ErrResolverClosed
	}
	r.unsubscribe = unsubscribe
	seen := r.notified
	r.mu.Unlock()

	sess, err := r.provider.CurrentSession(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("initial session request failed, treating as signed out")
		sess = nil
	}
	r.apply(EventInitialSession, sess, &seen)
	return nil
}

func (r *Resolver) handleEvent(ev Event) {
	r.apply(ev.Kind, ev.Session, nil)
}

// apply installs sess as the current session. When ifNotified is set the
// update is skipped if any change notification arrived since it was read.
func (r *Resolver) apply(kind EventKind, sess *Session, ifNotified *uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if ifNotified == nil {
		r.notified++
	} else if *ifNotified != r.notified {
		r.logger.Debug().Str("event", string(kind)).Msg("initial session superseded by change notification")
		return
	}
	// Sign-in and refresh notifications always re-resolve. Only the
	// initial read and a repeated sign-out collapse into the current state.
	if (ifNotified != nil || sess == nil) && r.sameSessionLocked(sess) {
		return
	}

	metrics.SessionEvents.WithLabelValues(string(kind)).Inc()
	r.generation++

	if sess == nil {
		r.state = State{Status: StatusNone, adminRole: r.adminRole}
		r.publishLocked()
		return
	}

	user := sess.User
	r.state = State{
		User:      &user,
		Token:     sess.Token,
		Status:    StatusResolving,
		adminRole: r.adminRole,
	}
	r.publishLocked()

	r.wg.Add(1)
	go r.resolve(r.generation, user.ID)
}

func (r *Resolver) sameSessionLocked(sess *Session) bool {
	if sess == nil {
		return r.state.User == nil
	}
	return r.state.User != nil &&
		r.state.User.ID == sess.User.ID &&
		r.state.Token == sess.Token
}

func (r *Resolver) resolve(gen uint64, userID string) {
	defer r.wg.Done()

	out := ResolveRole(r.ctx, r.roles, userID, r.timeout, r.logger)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || gen != r.generation {
		return
	}
	r.state.Role = out.Role
	r.state.Status = out.Status
	r.publishLocked()
}

// publishLocked hands the current state to every subscriber, replacing any
// value a slow subscriber has not read yet.
func (r *Resolver) publishLocked() {
	snapshot := r.state
	for _, ch := range r.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resolver) User() *User {
	return r.State().User
}

func (r *Resolver) Role() string {
	return r.State().Role
}

func (r *Resolver) IsAdmin() bool {
	return r.State().IsAdmin()
}

func (r *Resolver) IsLoading() bool {
	return r.State().IsLoading()
}

// Subscribe returns a channel that immediately receives the current state
// and then the latest state after every change. Intermediate states may be
// skipped by a slow reader. The channel is closed by cancel or Close.
func (r *Resolver) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = ch
	ch <- r.state
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subscribers[id]; ok {
				delete(r.subscribers, id)
				close(c)
			}
		})
	}
}

// WaitFor blocks until a state satisfies cond or ctx ends.
func (r *Resolver) WaitFor(ctx context.Context, cond func(State) bool) (State, error) {
	updates, cancel := r.Subscribe()
	defer cancel()

	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return r.State(), ErrResolverClosed
			}
			if cond(st) {
				return st, nil
			}
		case <-ctx.Done():
			return r.State(), ctx.Err()
		}
	}
}

// SignIn asks the provider for a password session. On failure the state is
// left untouched and an *AuthError is returned. On success the new session
// arrives through the change notification.
func (r *Resolver) SignIn(ctx context.Context, email, password string) error {
	err := r.provider.SignInWithPassword(ctx, email, password)
	switch {
	case err == nil:
		metrics.SignIns.WithLabelValues("success").Inc()
		return nil
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.SignIns.WithLabelValues("invalid_credentials").Inc()
		return &AuthError{Code: CodeInvalidCredentials, Message: "invalid credentials", Err: err}
	default:
		metrics.SignIns.WithLabelValues("error").Inc()
		r.logger.Error().Err(err).Msg("sign-in failed")
		return &AuthError{Code: CodeProviderUnavailable, Message: "sign-in is temporarily unavailable", Err: err}
	}
}

func (r *Resolver) SignOut(ctx context.Context) error {
	if err := r.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Close stops following the provider, cancels in-flight lookups, and closes
// all subscriber channels. Further state changes are ignored.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	unsubscribe := r.unsubscribe
	for id, ch := range r.subscribers {
		delete(r.subscribers, id)
		close(ch)
	}
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	r.cancel()
	r.wg.Wait()
}
