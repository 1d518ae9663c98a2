// Package swapfsm implements the per-role swap state machines as pure
// functions: Step(State, Event) -> (State, []Action). Neither FSM ever
// touches a wallet, a chain client, or a clock directly -- every side
// effect it wants is expressed as a walletaction.Action for the driver to
// carry out, and every safety-timer check is a CheckSafety,
// CheckFundDeadline or CheckRedeemDeadline call to which the driver passes
// the result of its own clock comparison (spec.md §9 design note).
package swapfsm

import (
	"github.com/hashlockd/swapd/internal/htlcparams"
)

// HtlcStatus is the monotone lifecycle of one HTLC leg, as far as this
// engine can observe it. Statuses only move forward; a watcher reporting
// an earlier status for an already-advanced leg is ignored (reordering
// invariance, spec.md §8).
type HtlcStatus int

const (
	NotDeployed HtlcStatus = iota
	Deployed
	Funded
	IncorrectlyFunded
	Redeemed
	Refunded
	Expired
)

func (s HtlcStatus) String() string {
	switch s {
	case NotDeployed:
		return "not_deployed"
	case Deployed:
		return "deployed"
	case Funded:
		return "funded"
	case IncorrectlyFunded:
		return "incorrectly_funded"
	case Redeemed:
		return "redeemed"
	case Refunded:
		return "refunded"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// rank orders statuses so a later-observed earlier status never regresses
// state (spec.md §8 invariant: event reordering must not change the
// outcome). IncorrectlyFunded sits at the same rank as Funded: a leg lands
// in exactly one of the two once its funding transaction is observed, and
// IncorrectlyFunded is terminal for its leg from there -- it never advances
// to Funded, only on to Refunded once its own expiry passes and the refund
// branch is spent.
func (s HtlcStatus) rank() int {
	switch s {
	case NotDeployed:
		return 0
	case Deployed:
		return 1
	case Funded:
		return 2
	case IncorrectlyFunded:
		return 2
	case Expired:
		return 3
	case Redeemed, Refunded:
		return 4
	default:
		return -1
	}
}

// advance returns the later of s and next, never regressing. A
// Redeemed/Refunded terminal status is sticky: nothing overwrites it.
func (s HtlcStatus) advance(next HtlcStatus) HtlcStatus {
	if s == Redeemed || s == Refunded {
		return s
	}
	if s == IncorrectlyFunded && next == Funded {
		return s
	}
	if next.rank() >= s.rank() {
		return next
	}
	return s
}

// SwapState is the FSM's full state: the status of both legs, plus the
// secret once it has been observed on-chain (Bob learns it from Alice's
// beta redeem; Alice always has it from swap creation).
type SwapState struct {
	Alpha  HtlcStatus
	Beta   HtlcStatus
	Secret *htlcparams.Secret

	// *Requested gate action emission so a replayed event (at-least-once
	// delivery, spec.md §4.5/§7) never re-issues an already-issued Action.
	// Re-issuing would be harmless (Actions are idempotent, spec.md §9) but
	// gating avoids redundant wallet calls on ordinary replay. Each field
	// belongs to exactly one role's FSM; the other role's Step never reads
	// or writes it, since only one of AliceFSM/BobFSM ever runs against a
	// given swap's state locally.
	alphaFundRequested   bool // Alice: Fund(alpha) issued
	betaRedeemRequested  bool // Alice: Redeem(beta) issued
	alphaRefundRequested bool // Alice: Refund(alpha) issued

	betaFundRequested    bool // Bob: Fund(beta) issued
	alphaRedeemRequested bool // Bob: Redeem(alpha) issued
	betaRefundRequested  bool // Bob: Refund(beta) issued
	bobAborted           bool // Bob: fund-deadline abort latched, never fund beta

	// betaRedeemDeadlinePassed is Alice's analogue of bobAborted: once
	// BetaRedeemDeadline fires without beta having actually redeemed, she
	// must stop attempting to redeem it and rely on CheckSafety's refund
	// path against alpha's own expiry instead (spec.md §4.4.1, scenario E).
	betaRedeemDeadlinePassed bool
}

// IsTerminal reports whether no further Action will ever be emitted for
// this swap: both legs have reached a terminal status.
func (s SwapState) IsTerminal() bool {
	return isTerminalStatus(s.Alpha) && isTerminalStatus(s.Beta)
}

func isTerminalStatus(s HtlcStatus) bool {
	return s == Redeemed || s == Refunded
}

// Snapshot is the fully-exported, serializable projection of a SwapState,
// for a driver to checkpoint and later restore exactly (spec.md §6
// persistence interface). SwapState itself keeps its gate fields
// unexported so only this package's Step functions can set them.
type Snapshot struct {
	Alpha  HtlcStatus
	Beta   HtlcStatus
	Secret *htlcparams.Secret

	AlphaFundRequested   bool
	BetaRedeemRequested  bool
	AlphaRefundRequested bool

	BetaFundRequested    bool
	AlphaRedeemRequested bool
	BetaRefundRequested  bool
	BobAborted           bool

	BetaRedeemDeadlinePassed bool
}

// Snapshot returns the serializable projection of s.
func (s SwapState) Snapshot() Snapshot {
	return Snapshot{
		Alpha:                    s.Alpha,
		Beta:                     s.Beta,
		Secret:                   s.Secret,
		AlphaFundRequested:       s.alphaFundRequested,
		BetaRedeemRequested:      s.betaRedeemRequested,
		AlphaRefundRequested:     s.alphaRefundRequested,
		BetaFundRequested:        s.betaFundRequested,
		AlphaRedeemRequested:     s.alphaRedeemRequested,
		BetaRefundRequested:      s.betaRefundRequested,
		BobAborted:               s.bobAborted,
		BetaRedeemDeadlinePassed: s.betaRedeemDeadlinePassed,
	}
}

// FromSnapshot restores a SwapState from a previously-taken Snapshot.
func FromSnapshot(snap Snapshot) SwapState {
	return SwapState{
		Alpha:                    snap.Alpha,
		Beta:                     snap.Beta,
		Secret:                   snap.Secret,
		alphaFundRequested:       snap.AlphaFundRequested,
		betaRedeemRequested:      snap.BetaRedeemRequested,
		alphaRefundRequested:     snap.AlphaRefundRequested,
		betaFundRequested:        snap.BetaFundRequested,
		alphaRedeemRequested:     snap.AlphaRedeemRequested,
		betaRefundRequested:      snap.BetaRefundRequested,
		bobAborted:               snap.BobAborted,
		betaRedeemDeadlinePassed: snap.BetaRedeemDeadlinePassed,
	}
}
