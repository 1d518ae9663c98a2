// Package swapd hosts the per-swap driver: one FSM instance per swap,
// wired to a Watcher pair, a Wallet, and a Store, replaying checkpointed
// state across restarts (spec.md §4.5/§6).
package swapd

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/swapfsm"
)

// Checkpoint is the durable record of one swap, written before any Action
// is acknowledged as complete (checkpoint-before-ack, spec.md §4.5): a
// crash between "wallet submitted" and "checkpoint written" must leave
// state a resumed driver can safely re-derive, since every walletaction.Action
// is idempotent against the underlying ledger.
type Checkpoint struct {
	Params    htlcparams.SwapParams
	Secret    *htlcparams.Secret // set only on Alice's checkpoint
	State     swapfsm.Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrNotFound is returned by Store.Load when no checkpoint exists for a
// SwapID.
var ErrNotFound = errors.New("swapd: checkpoint not found")

// Store is the persistence interface a Driver checkpoints through (spec.md
// §6). Implementations must make Save durable before returning -- the
// driver relies on that to satisfy checkpoint-before-ack.
type Store interface {
	// Save upserts the checkpoint for cp.Params.SwapID.
	Save(ctx context.Context, cp Checkpoint) error
	// Load retrieves a single checkpoint, or ErrNotFound.
	Load(ctx context.Context, swapID uuid.UUID) (Checkpoint, error)
	// ListPending returns every checkpoint whose swap has not reached a
	// terminal state on both legs, for resume-on-startup (spec.md §6).
	ListPending(ctx context.Context) ([]Checkpoint, error)
	// Delete removes a checkpoint, once its swap is terminal and past the
	// configured retention window.
	Delete(ctx context.Context, swapID uuid.UUID) error
}
