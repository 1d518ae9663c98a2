package ledgerevent

import (
	"context"
	"errors"

	"github.com/hashlockd/swapd/internal/htlcparams"
)

// Common errors a Watcher implementation returns.
var (
	ErrNotWatching   = errors.New("ledgerevent: watch not started")
	ErrAlreadyClosed = errors.New("ledgerevent: watcher closed")
)

// Watcher is the ledger-specific external collaborator a swap driver asks
// to track one HTLC. Implementations hide the chain client, polling
// cadence, and confirmation policy; the FSM only ever sees the Events
// channel (spec.md §4.2, Non-goal: blockchain clients/watchers themselves
// are not part of this engine).
type Watcher interface {
	// Watch begins tracking p, on the given leg, and returns a channel of
	// Events for it. The channel is closed when ctx is canceled or Close
	// is called.
	Watch(ctx context.Context, leg htlcparams.Leg, p htlcparams.Params) (<-chan Event, error)

	// Height reports the watcher's current view of chain height, for
	// height-based Expiry comparisons. Wall-clock-only ledgers may return 0.
	Height(ctx context.Context) (int64, error)

	// Close releases the watcher's underlying connection.
	Close() error
}

// FundWatcher is satisfied by a Watcher able to confirm its own funding
// transaction was broadcast by the local wallet -- only the account-chain
// and UTXO watchers need this; a PaymentChannel leg is funded by routing a
// payment directly, so it has no separate "confirm the funding tx" step.
type FundWatcher interface {
	Watcher
	// ConfirmFunding blocks until txRef reaches the configured
	// confirmation depth, or ctx is canceled.
	ConfirmFunding(ctx context.Context, txRef string) error
}
