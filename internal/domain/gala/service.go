package gala

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Togather-Foundation/gala/internal/audit"
	"github.com/Togather-Foundation/gala/internal/domain/ids"
	"github.com/Togather-Foundation/gala/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTTL = time.Minute
	activeKey       = "active-gala-id"

	// loadTimeout bounds a shared load, which outlives the caller that
	// started it.
	loadTimeout = 10 * time.Second
)

type Options struct {
	CacheTTL time.Duration
	Audit    *audit.Logger
	Logger   zerolog.Logger
}

// Service is the only owner of gala snapshots. Readers get shared,
// read-only snapshots from a TTL cache; admin writes go through Save and
// Delete, which invalidate it.
type Service struct {
	repo      Repository
	cache     *cache.Cache
	loads     singleflight.Group
	validator *validator.Validate

	// epoch counts invalidations. A load only fills the cache if no write
	// invalidated it while the load was reading.
	mu    sync.Mutex
	epoch uint64

	audit  *audit.Logger
	logger zerolog.Logger
}

func NewService(repo Repository, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Audit == nil {
		opts.Audit = audit.Nop()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Service{
		repo:      repo,
		cache:     cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		validator: v,
		audit:     opts.Audit,
		logger:    opts.Logger.With().Str("component", "gala").Logger(),
	}
}

// Snapshot returns the cached snapshot for galaID, loading it on a miss.
// Concurrent misses for the same gala share one load.
func (s *Service) Snapshot(ctx context.Context, galaID string) (*Snapshot, error) {
	if cached, ok := s.cache.Get(galaID); ok {
		metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return cached.(*Snapshot), nil
	}
	metrics.SnapshotCache.WithLabelValues("miss").Inc()
	return s.load(ctx, galaID)
}

// ActiveSnapshot returns the snapshot of the gala shown on the public site.
func (s *Service) ActiveSnapshot(ctx context.Context) (*Snapshot, error) {
	id, err := s.activeID(ctx)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(ctx, id)
}

// Refetch drops any cached copy of galaID and loads it again.
func (s *Service) Refetch(ctx context.Context, galaID string) (*Snapshot, error) {
	s.mu.Lock()
	s.epoch++
	s.cache.Delete(galaID)
	s.loads.Forget(galaID)
	s.mu.Unlock()
	return s.load(ctx, galaID)
}

func (s *Service) activeID(ctx context.Context) (string, error) {
	if cached, ok := s.cache.Get(activeKey); ok {
		return cached.(string), nil
	}
	v, _, err := s.shared(ctx, activeKey, func(ctx context.Context) (interface{}, error) {
		epoch := s.currentEpoch()
		id, err := s.repo.ActiveGalaID(ctx)
		if err != nil {
			return "", err
		}
		s.store(epoch, activeKey, id)
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Service) load(ctx context.Context, galaID string) (*Snapshot, error) {
	v, shared, err := s.shared(ctx, galaID, func(ctx context.Context) (interface{}, error) {
		epoch := s.currentEpoch()
		start := time.Now()
		snap, err := s.repo.LoadSnapshot(ctx, galaID)
		metrics.SnapshotLoadDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		s.store(epoch, galaID, snap)
		return snap, nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && ctx.Err() == nil {
			s.logger.Error().Err(err).Str("gala_id", galaID).Msg("snapshot load failed")
		}
		return nil, err
	}
	snap := v.(*Snapshot)
	s.logger.Debug().
		Str("gala_id", galaID).
		Bool("shared", shared).
		Int("categories", len(snap.Categories)).
		Msg("snapshot loaded")
	return snap, nil
}

// shared runs fn once per key for all concurrent callers. fn gets a
// context that survives any single caller going away; each caller still
// stops waiting when its own ctx ends.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	results := s.loads.DoChan(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return fn(lctx)
	})
	select {
	case res := <-results:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (s *Service) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// store caches value under key unless an invalidation happened after epoch
// was read.
func (s *Service) store(epoch uint64, key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		s.logger.Debug().Str("key", key).Msg("discarding load that raced a write")
		return
	}
	s.cache.SetDefault(key, value)
}

// Save creates rec when it has no id and updates it otherwise. galaID
// scopes the write: updated records and parents must belong to it. For
// galas themselves galaID is the gala's own id, or empty on create.
func (s *Service) Save(ctx context.Context, actor audit.Actor, galaID string, rec Record) (Record, error) {
	kind := rec.RecordKind()
	action := "update"

	rec.clean()
	if kind != KindGala {
		rec.scope(galaID)
	} else if galaID != "" {
		rec.setID(galaID)
	}

	if err := s.validator.Struct(rec); err != nil {
		verr := newValidationError(err)
		s.audit.LogFailure(actor, auditAction(kind, action), string(kind), rec.RecordID(), galaID, map[string]string{"error": verr.Error()})
		return nil, verr
	}

	var snap *Snapshot
	if kind != KindGala || rec.RecordID() != "" {
		var err error
		if snap, err = s.Snapshot(ctx, galaID); err != nil {
			return nil, err
		}
	}

	if rec.RecordID() == "" {
		action = "create"
		id, err := ids.NewULID()
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		rec.setID(id)
	} else if !snap.Contains(kind, rec.RecordID()) {
		return nil, ErrNotFound
	}

	if parentKind, parentID := rec.parent(); parentKind != "" && !snap.Contains(parentKind, parentID) {
		return nil, ValidationError{Fields: []FieldError{{
			Field:   parentField(parentKind),
			Message: "does not belong to this gala",
		}}}
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		s.audit.LogFailure(actor, auditAction(kind, action), string(kind), rec.RecordID(), galaID, map[string]string{"error": err.Error()})
		return nil, fmt.Errorf("save %s: %w", kind, err)
	}

	s.invalidate(kind, galaID)
	metrics.AdminWrites.WithLabelValues(string(kind), action).Inc()
	s.audit.LogSuccess(actor, auditAction(kind, action), string(kind), rec.RecordID(), galaID, nil)
	return rec, nil
}

// Delete removes a record of kind from galaID.
func (s *Service) Delete(ctx context.Context, actor audit.Actor, galaID string, kind Kind, id string) error {
	snap, err := s.Snapshot(ctx, galaID)
	if err != nil {
		return err
	}
	if !snap.Contains(kind, id) {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, kind, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.audit.LogFailure(actor, auditAction(kind, "delete"), string(kind), id, galaID, map[string]string{"error": err.Error()})
		}
		s.invalidate(kind, galaID)
		return err
	}

	s.invalidate(kind, galaID)
	metrics.AdminWrites.WithLabelValues(string(kind), "delete").Inc()
	s.audit.LogSuccess(actor, auditAction(kind, "delete"), string(kind), id, galaID, nil)
	return nil
}

// invalidate drops cached state a write to kind may have changed. Gala
// writes touch every snapshot's gala list and the active gala.
func (s *Service) invalidate(kind Kind, galaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++

	s.loads.Forget(galaID)
	if kind == KindGala {
		s.loads.Forget(activeKey)
		s.cache.Flush()
		return
	}
	s.cache.Delete(galaID)
}

func auditAction(kind Kind, action string) string {
	return "admin." + string(kind) + "." + action
}

func parentField(kind Kind) string {
	switch kind {
	case KindCategory:
		return "category_id"
	case KindPanel:
		return "panel_id"
	default:
		return string(kind)
	}
}
