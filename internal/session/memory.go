package session

import (
	"context"
	"sync"
	"time"
)

// memEntry pairs a record with its expiry deadline.
type memEntry struct {
	rec       PendingActivation
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is a process-local Store backed by a mutex-guarded map.
//
// Expired entries are treated as absent on read and additionally swept
// opportunistically after a threshold of lookups, keeping memory bounded
// without a background goroutine.
//
// This type is safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memEntry
	cleanupN uint64

	// now is swappable for tests.
	now func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

// sweepThreshold is the number of lookups between opportunistic sweeps.
const sweepThreshold = 1000

// Put stores rec for chatID, replacing any previous record. A ttl <= 0
// stores the record without expiry.
func (s *MemoryStore) Put(_ context.Context, chatID string, rec PendingActivation, ttl time.Duration) error {
	e := memEntry{rec: rec}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[chatID] = e
	s.mu.Unlock()
	return nil
}

// Get returns the live record for chatID, or ErrNotFound when the record is
// absent or has expired. Expired records are deleted on the spot.
func (s *MemoryStore) Get(_ context.Context, chatID string) (*PendingActivation, error) {
	now := s.now()

	s.mu.Lock()
	// Opportunistic sweep BEFORE the lookup so the requested entry itself can
	// be evicted when stale.
	s.cleanupN++
	if s.cleanupN >= sweepThreshold {
		for k, e := range s.entries {
			if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
				delete(s.entries, k)
			}
		}
		s.cleanupN = 0
	}

	e, ok := s.entries[chatID]
	if ok && !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
		delete(s.entries, chatID)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	rec := e.rec
	return &rec, nil
}

// Delete removes the record for chatID. Deleting an absent record is a no-op.
func (s *MemoryStore) Delete(_ context.Context, chatID string) error {
	s.mu.Lock()
	delete(s.entries, chatID)
	s.mu.Unlock()
	return nil
}
