package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Togather-Foundation/gala/internal/metrics"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRoleLookupTimeout bounds a role lookup when no timeout is set.
const DefaultRoleLookupTimeout = 800 * time.Millisecond

var tracer = otel.Tracer("github.com/Togather-Foundation/gala/internal/session")

// Outcome is the settled result of one role lookup.
type Outcome struct {
	Role   string
	Status Status
	Err    error
}

// For returns the state of user once this outcome is known. adminRole is
// the tag that grants admin access; empty means auth.DefaultAdminRole.
func (o Outcome) For(user User, adminRole string) State {
	return State{
		User:      &user,
		Role:      o.Role,
		Status:    o.Status,
		adminRole: adminRole,
	}
}

// ResolveRole looks up userID's role, giving up after timeout. Status is
// StatusResolved when the lookup answered (a missing profile resolves with
// an empty role) and StatusRoleUnknown otherwise.
//
// Losing the race does not cancel the lookup; it keeps running until ctx
// ends and its late answer is discarded.
func ResolveRole(ctx context.Context, lookup RoleLookup, userID string, timeout time.Duration, logger zerolog.Logger) Outcome {
	if timeout <= 0 {
		timeout = DefaultRoleLookupTimeout
	}

	ctx, span := tracer.Start(ctx, "session.ResolveRole",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	start := time.Now()
	out, label := race(ctx, lookup, userID, timeout)

	metrics.RoleLookups.WithLabelValues(label).Inc()
	metrics.RoleLookupDuration.Observe(time.Since(start).Seconds())

	span.SetAttributes(attribute.String("role.outcome", label))
	if out.Err != nil {
		span.SetStatus(codes.Error, out.Err.Error())
		logger.Warn().
			Err(out.Err).
			Str("user_id", userID).
			Dur("timeout", timeout).
			Msg("role lookup did not settle, role unknown")
	} else {
		logger.Debug().
			Str("user_id", userID).
			Str("role", out.Role).
			Str("outcome", label).
			Msg("role resolved")
	}
	return out
}

type lookupResult struct {
	role string
	err  error
}

func race(ctx context.Context, lookup RoleLookup, userID string, timeout time.Duration) (Outcome, string) {
	if strings.TrimSpace(userID) == "" {
		return Outcome{Status: StatusRoleUnknown, Err: fmt.Errorf("%w: empty user id", ErrRoleLookupFailed)}, "failure"
	}

	results := make(chan lookupResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- lookupResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		role, err := lookup.LookupRole(ctx, userID)
		results <- lookupResult{role: role, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		switch {
		case res.err == nil:
			return Outcome{Role: strings.TrimSpace(res.role), Status: StatusResolved}, "resolved"
		case errors.Is(res.err, ErrProfileNotFound):
			return Outcome{Status: StatusResolved}, "no_profile"
		default:
			return Outcome{Status: StatusRoleUnknown, Err: fmt.Errorf("%w: %w", ErrRoleLookupFailed, res.err)}, "failure"
		}
	case <-timer.C:
		return Outcome{Status: StatusRoleUnknown, Err: ErrRoleLookupTimeout}, "timeout"
	case <-ctx.Done():
		return Outcome{Status: StatusRoleUnknown, Err: fmt.Errorf("%w: %w", ErrRoleLookupFailed, ctx.Err())}, "canceled"
	}
}
