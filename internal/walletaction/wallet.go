package walletaction

import (
	"context"
	"errors"
)

// Errors a Wallet returns; the driver maps these to a retry-or-abort
// decision per spec §7's error taxonomy.
var (
	// ErrInsufficientFunds means the local wallet cannot cover the Fund
	// action -- not retryable without operator intervention.
	ErrInsufficientFunds = errors.New("walletaction: insufficient funds")
	// ErrRejected means the ledger itself rejected the action (e.g. the
	// HTLC was already spent by the counterparty) -- not retryable, and
	// typically means the FSM should re-derive state from a fresh Event.
	ErrRejected = errors.New("walletaction: action rejected by ledger")
	// ErrTransient means a retry with backoff is appropriate (RPC
	// timeout, fee estimation failure, temporary disconnection).
	ErrTransient = errors.New("walletaction: transient failure")
)

// Retryable reports whether a driver should retry an action after this
// error, using backoff, rather than surfacing it as a terminal failure.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

// Result is what a Wallet returns after submitting an Action, recorded in
// the swap's checkpoint so resumption doesn't require re-deriving it.
type Result struct {
	// TxRef is an opaque ledger-specific reference to the submitted
	// transaction/payment (tx hash, outpoint, preimage-reveal tx).
	TxRef string
}

// Wallet is the external collaborator that turns an Action into a signed,
// broadcast ledger operation. Implementations hold private keys and chain
// clients; this engine only ever calls through this interface (spec.md
// §4.3, Non-goal: wallet implementations themselves).
type Wallet interface {
	// Submit performs action and returns once it has been accepted for
	// broadcast (not necessarily confirmed -- confirmation is a Watcher
	// concern). Submit must be safe to call twice with an
	// already-completed action; implementations should treat
	// ErrRejected from the ledger as success when the existing on-chain
	// state already matches the action's intent.
	Submit(ctx context.Context, action Action) (Result, error)
}
