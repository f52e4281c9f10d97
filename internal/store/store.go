// Package store persists the durable sync state: which periods of each
// list are permanently closed, and a journal of past sync runs.
package store

import (
	"context"

	"github.com/nhle/listmirror/internal/model"
	"github.com/nhle/listmirror/internal/period"
)

// Store is the persistence interface for completion markers and the
// sync-run journal.
type Store interface {
	// IsClosed reports whether a period of a list is permanently closed.
	IsClosed(ctx context.Context, list string, p period.Period) (bool, error)

	// MarkClosed marks a period of a list as permanently closed.
	// Marking an already-closed period is a no-op.
	MarkClosed(ctx context.Context, list string, p period.Period) error

	// RecordRun appends an entry to the sync-run journal.
	RecordRun(ctx context.Context, run model.SyncRun) error

	// LastRun returns the most recent journal entry for a list, or nil
	// when none exists.
	LastRun(ctx context.Context, list string) (*model.SyncRun, error)
}
