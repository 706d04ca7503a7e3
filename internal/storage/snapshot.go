// ABOUTME: Cache snapshot persistence on the Charm KV backend
// ABOUTME: Stores the full snapshot under one key for atomic reload
package storage

import (
	"fmt"

	"github.com/notewell/engine/internal/cache"
	"github.com/notewell/engine/internal/charm"
)

// kvClient is the subset of the charm client the snapshot store needs
type kvClient interface {
	SetJSON(key string, value interface{}) error
	GetJSON(key string, dest interface{}) error
}

// CharmSnapshotStore persists embedding-cache snapshots in Charm KV so a
// warm cache survives restarts and syncs across machines.
type CharmSnapshotStore struct {
	client kvClient
}

// NewCharmSnapshotStore wraps a charm client as a cache snapshot store
func NewCharmSnapshotStore(client kvClient) *CharmSnapshotStore {
	return &CharmSnapshotStore{client: client}
}

// SaveCacheSnapshot writes the snapshot as one JSON document
func (s *CharmSnapshotStore) SaveCacheSnapshot(entries []cache.SnapshotEntry) error {
	if err := s.client.SetJSON(charm.SnapshotKey, entries); err != nil {
		return fmt.Errorf("failed to save cache snapshot: %w", err)
	}
	return nil
}

// LoadCacheSnapshot reads the snapshot back. A missing key is a cold
// start, not an error; corrupt JSON surfaces as an error for the caller
// to log and discard.
func (s *CharmSnapshotStore) LoadCacheSnapshot() ([]cache.SnapshotEntry, error) {
	var entries []cache.SnapshotEntry
	if err := s.client.GetJSON(charm.SnapshotKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
