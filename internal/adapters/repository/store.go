// Package repository defines the snapshot store interface and errors.
package repository

import (
	"context"

	"github.com/okian/pinsight/internal/domain/model"
)

// Store holds the current aggregated snapshot. Analysis engines read a
// copy of the snapshot value before each batch so a concurrent rebuild
// never races with in-flight reads.
type Store interface {
	// Current returns the active snapshot. Returns ErrNoSnapshot before
	// the first successful ingest.
	Current(ctx context.Context) (model.Snapshot, error)

	// Replace atomically swaps in a freshly built snapshot.
	Replace(ctx context.Context, snap model.Snapshot)

	// Count returns the number of locations in the active snapshot.
	Count(ctx context.Context) int
}
