// Package session holds the short-lived conversational state of the
// activation flow: the "awaiting code" marker written when a chat begins
// manual activation and consumed when the code arrives. Records expire on
// their own, so an abandoned flow simply evaporates instead of wedging the
// chat.
//
// Two implementations are provided:
//
//   - MemoryStore: process-local, for single-instance deployments and tests.
//   - RedisStore:  shared, for horizontally scaled deployments where the
//     code may arrive on a different instance than the one that issued the
//     prompt.
//
// Durable warehouse bindings never live here; they belong to the repo layer.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that no live pending activation exists for the chat.
// Expired records are indistinguishable from absent ones.
var ErrNotFound = errors.New("session: pending activation not found")

// PendingActivation is the state parked between "begin activation" and the
// code submission that resolves it.
type PendingActivation struct {
	// WarehouseID is the warehouse the chat claimed when starting the flow.
	// A submitted code must resolve to this exact warehouse.
	WarehouseID string `json:"warehouse_id"`
	// StartedAt records when the flow was opened, for diagnostics.
	StartedAt time.Time `json:"started_at"`
}

// Store is the minimal contract for pending-activation state.
//
// Put overwrites any previous record for the chat: re-running "begin
// activation" always re-arms the flow with the newest warehouse claim.
type Store interface {
	Put(ctx context.Context, chatID string, rec PendingActivation, ttl time.Duration) error
	Get(ctx context.Context, chatID string) (*PendingActivation, error)
	Delete(ctx context.Context, chatID string) error
}
