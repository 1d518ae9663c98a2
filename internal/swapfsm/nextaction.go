package swapfsm

import "github.com/hashlockd/swapd/internal/htlcparams"

// PendingAction names the single next local action a role should take
// against a SwapState, for UI integration (spec.md §6 role-typed views).
type PendingAction string

const (
	PendingNone   PendingAction = "none"
	PendingFund   PendingAction = "fund"
	PendingRedeem PendingAction = "redeem"
	PendingRefund PendingAction = "refund"
)

// NextAction projects which action, if any, the local party playing role
// should take next given s. It is a read-only view: the driver's own
// Step/CheckSafety/CheckFundDeadline calls are what actually gate and emit
// Actions against a wallet. This mirrors that gating rather than
// re-deriving it -- it reports refund/redeem only once the matching
// *Requested flag is already set (an Action has genuinely been issued and
// is awaiting on-chain confirmation), so a UI never sees a guess about a
// safety deadline it hasn't itself evaluated.
func NextAction(role htlcparams.Role, s SwapState) PendingAction {
	switch role {
	case htlcparams.Alice:
		return nextActionAlice(s)
	case htlcparams.Bob:
		return nextActionBob(s)
	default:
		return PendingNone
	}
}

func nextActionAlice(s SwapState) PendingAction {
	if s.alphaRefundRequested && s.Alpha != Refunded {
		return PendingRefund
	}
	if s.betaRedeemRequested && s.Beta != Redeemed {
		return PendingRedeem
	}
	if s.Alpha == NotDeployed {
		return PendingFund
	}
	return PendingNone
}

func nextActionBob(s SwapState) PendingAction {
	if s.betaRefundRequested && s.Beta != Refunded {
		return PendingRefund
	}
	if s.alphaRedeemRequested && s.Alpha != Redeemed {
		return PendingRedeem
	}
	if s.Alpha == Funded && s.Beta == NotDeployed && !s.bobAborted {
		return PendingFund
	}
	return PendingNone
}
