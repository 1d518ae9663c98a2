package swapfsm

import (
	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/ledgerevent"
	"github.com/hashlockd/swapd/internal/walletaction"
)

// AliceFSM drives the initiator side of a swap: Alice generates the
// secret, funds alpha first, and redeems beta the moment it is funded
// (revealing the secret on-chain for Bob to pick up).
type AliceFSM struct {
	Params htlcparams.SwapParams
	Secret htlcparams.Secret
}

// NewAliceFSM constructs an AliceFSM. secret must hash to
// params.Alpha.SecretHash (and params.Beta.SecretHash, which Validate
// already requires to match).
func NewAliceFSM(params htlcparams.SwapParams, secret htlcparams.Secret) AliceFSM {
	return AliceFSM{Params: params, Secret: secret}
}

// Start returns the initial state and the Fund action for alpha. Alice is
// the only party who acts before observing any event (spec.md §4.4.1: she
// is the one who moves first).
func (f AliceFSM) Start() (SwapState, []walletaction.Action) {
	state := SwapState{alphaFundRequested: true}
	actions := []walletaction.Action{
		{Kind: walletaction.Fund, Leg: htlcparams.AlphaLeg, Params: f.Params.Alpha},
	}
	return state, actions
}

// Step advances state in response to one observed ledger event, returning
// any new Actions the driver must carry out. Calling Step twice with the
// same (state, event) pair is always safe: gated fields in state prevent
// re-emitting an already-issued Action (spec.md §8 duplicate-event
// invariant).
func (f AliceFSM) Step(state SwapState, ev ledgerevent.Event) (SwapState, []walletaction.Action) {
	var actions []walletaction.Action

	switch ev.Leg {
	case htlcparams.AlphaLeg:
		state.Alpha = state.Alpha.advance(statusFor(ev.Kind))

		if ev.Kind == ledgerevent.Refunded {
			state.alphaRefundRequested = true
		}

	case htlcparams.BetaLeg:
		prevBeta := state.Beta
		state.Beta = state.Beta.advance(statusFor(ev.Kind))

		// No unilateral redemption: Alice only redeems beta once she has
		// actually observed it Funded -- never speculatively, and never
		// against an IncorrectlyFunded beta (spec.md §4.4.4). A BetaFunded
		// event arriving after BetaRedeemDeadline has already fired is not
		// acted on either: the deadline having passed means she has already
		// switched to refund-only mode (spec.md §4.4.1, scenario E).
		if prevBeta != Funded && state.Beta == Funded &&
			!state.betaRedeemRequested && !state.betaRedeemDeadlinePassed {
			state.betaRedeemRequested = true
			actions = append(actions, walletaction.Action{
				Kind:   walletaction.Redeem,
				Leg:    htlcparams.BetaLeg,
				Params: f.Params.Beta,
				Secret: f.Secret,
			})
		}
	}

	return state, actions
}

// CheckSafety evaluates the BetaRedeemDeadline rule: once Alice's own
// attempt to redeem beta has missed its safety window -- whether because
// beta never funded, never confirmed her Redeem, or Bob refunded it first
// -- and alpha itself has now expired, she must refund alpha rather than
// let it sit unclaimed (spec.md §4.4.1 safety rule, scenarios B/C/E). The
// only state in which no refund is ever owed is Redeemed: once Alice's own
// Redeem(beta) has actually confirmed, the swap is terminal-ok on her side
// and alpha is hers to keep locked for Bob to redeem. It returns the
// Refund(alpha) action once alpha itself has actually expired; before that
// point there is nothing to do but wait, since a refund broadcast before
// expiry would simply fail.
func (f AliceFSM) CheckSafety(state SwapState, alphaExpired bool) (SwapState, []walletaction.Action) {
	if state.Beta == Redeemed {
		return state, nil
	}
	if !alphaExpired {
		return state, nil
	}
	if state.alphaRefundRequested {
		return state, nil
	}
	state.alphaRefundRequested = true
	return state, []walletaction.Action{
		{Kind: walletaction.Refund, Leg: htlcparams.AlphaLeg, Params: f.Params.Alpha},
	}
}

// CheckRedeemDeadline implements the BetaRedeemDeadline rule (spec.md
// §4.4.1): once beta's own safety window has elapsed without Alice's own
// Redeem having actually confirmed, she must stop attempting to redeem it
// at all and rely solely on CheckSafety's refund path against alpha's own
// expiry. It only latches the suppression -- it never itself issues a
// refund, since alpha may not have expired yet. Calling this once beta has
// actually redeemed is a no-op; the deadline has no teeth past that point.
func (f AliceFSM) CheckRedeemDeadline(state SwapState, deadlinePassed bool) SwapState {
	if state.Beta == Redeemed {
		return state
	}
	if deadlinePassed {
		state.betaRedeemDeadlinePassed = true
	}
	return state
}

// statusFor maps an observed ledger event kind onto the monotone
// HtlcStatus lattice.
func statusFor(kind ledgerevent.Kind) HtlcStatus {
	switch kind {
	case ledgerevent.Deployed:
		return Deployed
	case ledgerevent.Funded:
		return Funded
	case ledgerevent.IncorrectlyFunded:
		return IncorrectlyFunded
	case ledgerevent.Redeemed:
		return Redeemed
	case ledgerevent.Refunded:
		return Refunded
	case ledgerevent.Expired:
		return Expired
	default:
		return NotDeployed
	}
}
