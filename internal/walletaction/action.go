// Package walletaction defines the ledger-agnostic action a swap FSM asks
// an external collaborator to perform. The FSM never signs or broadcasts
// anything itself; it only produces Actions (spec.md §4.3, Non-goal:
// wallet implementations and key custody are out of scope).
package walletaction

import (
	"github.com/hashlockd/swapd/internal/htlcparams"
)

// Kind identifies what a Wallet should do.
type Kind int

const (
	// Fund broadcasts the transaction/call that deploys an HTLC.
	Fund Kind = iota
	// Redeem spends the HTLC's secret-reveal branch.
	Redeem
	// Refund spends the HTLC's timeout branch.
	Refund
	// Notify sends an off-chain payment-channel artifact (e.g. a BOLT-11
	// payment request) to the counterparty; it has no on-chain effect.
	Notify
)

func (k Kind) String() string {
	switch k {
	case Fund:
		return "fund"
	case Redeem:
		return "redeem"
	case Refund:
		return "refund"
	case Notify:
		return "notify"
	default:
		return "unknown"
	}
}

// Action is a single side effect an FSM Step produces for the driver to
// hand to a Wallet. Actions are idempotent by construction: issuing the
// same Action twice (after a crash-restart replay) must be safe, since the
// underlying ledger or wallet itself rejects a duplicate spend.
type Action struct {
	Kind Kind
	// Leg identifies which HTLC (alpha or beta) this action concerns.
	Leg htlcparams.Leg
	// Params is the HTLC this action targets.
	Params htlcparams.Params
	// Secret is populated only for Redeem actions.
	Secret htlcparams.Secret
	// PaymentRequest is populated only for Notify actions on a
	// PaymentChannel leg (the BOLT-11 invoice to hand to the counterparty).
	PaymentRequest string
}
