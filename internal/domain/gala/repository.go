package gala

import "context"

type Repository interface {
	// ActiveGalaID returns the gala currently shown on the public site, or
	// ErrNoActiveGala.
	ActiveGalaID(ctx context.Context) (string, error)
	// LoadSnapshot returns every record of galaID in position order, or
	// ErrNotFound.
	LoadSnapshot(ctx context.Context, galaID string) (*Snapshot, error)
	// Save inserts rec or replaces the row with the same id.
	Save(ctx context.Context, rec Record) error
	// Delete removes a record and everything nested under it, or returns
	// ErrNotFound.
	Delete(ctx context.Context, kind Kind, id string) error
}
