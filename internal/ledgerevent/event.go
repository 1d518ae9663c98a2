// Package ledgerevent defines the ledger-agnostic event stream an FSM
// consumes. A Watcher translates chain-specific logs/blocks/channel updates
// into this uniform shape; the FSM never imports a chain client directly.
package ledgerevent

import (
	"time"

	"github.com/hashlockd/swapd/internal/htlcparams"
)

// Kind identifies what happened to a tracked HTLC.
type Kind int

const (
	// Unknown is the zero value and never a valid observed event.
	Unknown Kind = iota
	// Deployed reports the HTLC contract/UTXO now exists at a location, for
	// account chains where creation and funding are two transactions. For
	// ledgers that fuse deploy+fund into a single transaction (UTXO chains,
	// and this engine's registry-style EVM HTLC contract), a watcher emits
	// Deployed immediately followed by Funded from that one observation.
	Deployed
	// Funded reports the HTLC at a location now holds the required asset
	// and quantity -- this, not Deployed, is what gates the counterparty's
	// next action (spec.md §4.2/§4.4).
	Funded
	// Redeemed reports the HTLC was spent via its secret-reveal branch.
	// Secret is populated.
	Redeemed
	// Refunded reports the HTLC was spent via its timeout branch.
	Refunded
	// Expired reports the HTLC's timeout has passed with no spend seen yet
	// (a locally-derived event, not necessarily an on-chain one).
	Expired
	// IncorrectlyFunded reports a funding transaction that does not match
	// the expected Params (wrong amount, wrong script, wrong asset).
	IncorrectlyFunded
)

func (k Kind) String() string {
	switch k {
	case Deployed:
		return "deployed"
	case Funded:
		return "funded"
	case Redeemed:
		return "redeemed"
	case Refunded:
		return "refunded"
	case Expired:
		return "expired"
	case IncorrectlyFunded:
		return "incorrectly_funded"
	default:
		return "unknown"
	}
}

// Event is the uniform, ledger-agnostic notification a Watcher emits for one
// leg (alpha or beta) of a swap.
type Event struct {
	Kind Kind
	// Leg is which HTLC this event concerns, so a driver tracking both
	// legs' watchers can route it to the right FSM input.
	Leg htlcparams.Leg
	// Secret is populated only for Redeemed events on the ledger the
	// counterparty redeemed; this is how the secret crosses ledgers.
	Secret htlcparams.Secret
	// ObservedAt is when the local watcher saw this, for checkpoint
	// ordering and staleness diagnostics -- not a consensus timestamp.
	ObservedAt time.Time
	// TxRef is an opaque ledger-specific reference (tx hash, outpoint) for
	// logging and status-feed display.
	TxRef string
	// Confirmations is how deep the observed transaction is, so a Watcher
	// can be asked to wait for more before promoting Deployed.
	Confirmations uint32
	// ActualQuantity is populated on Funded and IncorrectlyFunded events:
	// the quantity actually observed locked at the HTLC's location, which
	// an IncorrectlyFunded event reports as less than Params.Quantity.
	ActualQuantity uint64
}
