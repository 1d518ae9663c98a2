package swapfsm

import (
	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/ledgerevent"
	"github.com/hashlockd/swapd/internal/walletaction"
)

// BobFSM drives the responder side of a swap: Bob waits for alpha to be
// funded, then funds beta; once Alice redeems beta (revealing the secret),
// Bob extracts it and redeems alpha.
type BobFSM struct {
	Params htlcparams.SwapParams
}

// NewBobFSM constructs a BobFSM. Bob never knows the secret in advance --
// it only becomes available once observed in a Redeemed event on beta.
func NewBobFSM(params htlcparams.SwapParams) BobFSM {
	return BobFSM{Params: params}
}

// Start returns Bob's initial state: he takes no action until alpha is
// observed funded (spec.md §4.4.2: Bob moves second).
func (f BobFSM) Start() (SwapState, []walletaction.Action) {
	return SwapState{}, nil
}

// Step advances state in response to one observed ledger event.
func (f BobFSM) Step(state SwapState, ev ledgerevent.Event) (SwapState, []walletaction.Action) {
	var actions []walletaction.Action

	switch ev.Leg {
	case htlcparams.AlphaLeg:
		prevAlpha := state.Alpha
		state.Alpha = state.Alpha.advance(statusFor(ev.Kind))

		// No unilateral redemption: Bob only funds beta once alpha is
		// actually, correctly funded -- never against IncorrectlyFunded,
		// and never if the fund-deadline abort already fired.
		if prevAlpha != Funded && state.Alpha == Funded &&
			!state.betaFundRequested && !state.bobAborted {
			state.betaFundRequested = true
			actions = append(actions, walletaction.Action{
				Kind:   walletaction.Fund,
				Leg:    htlcparams.BetaLeg,
				Params: f.Params.Beta,
			})
		}

	case htlcparams.BetaLeg:
		state.Beta = state.Beta.advance(statusFor(ev.Kind))

		if ev.Kind == ledgerevent.Redeemed && !state.alphaRedeemRequested {
			secret := htlcparams.Secret(ev.Secret)
			if !htlcparams.VerifySecret(secret, f.Params.Alpha.SecretHash) {
				// The revealed preimage does not match alpha's commitment;
				// this would be a protocol violation upstream. Do not act
				// on it -- wait for a correctly-matching reveal instead of
				// broadcasting a doomed redeem.
				break
			}
			state.Secret = &secret
			state.alphaRedeemRequested = true
			actions = append(actions, walletaction.Action{
				Kind:   walletaction.Redeem,
				Leg:    htlcparams.AlphaLeg,
				Params: f.Params.Alpha,
				Secret: secret,
			})
		}

		if ev.Kind == ledgerevent.Refunded {
			state.betaRefundRequested = true
		}
	}

	return state, actions
}

// CheckFundDeadline implements the fund-deadline abort rule: if alpha has
// not funded by the configured deadline, Bob must never fund beta even if
// alpha funds later, since by then the swap's timing safety margin against
// his own beta would already be eroded (spec.md §4.4.2). Calling this after
// alpha has already funded (Bob has therefore already funded or is about
// to fund beta) is a no-op -- the abort only has teeth before that point.
func (f BobFSM) CheckFundDeadline(state SwapState, deadlineElapsed bool) SwapState {
	if state.Alpha == Funded {
		return state
	}
	if deadlineElapsed {
		state.bobAborted = true
	}
	return state
}

// CheckSafety evaluates whether Bob should refund his own beta leg: once
// beta has expired and Alice never redeemed it, Bob reclaims his funds.
// This fires whether beta landed in Funded or IncorrectlyFunded -- even a
// leg Bob funded incorrectly is still his to reclaim once it expires
// (spec.md §4.4.4, scenario D) -- but never if it never funded at all, or
// has already reached a terminal status.
func (f BobFSM) CheckSafety(state SwapState, betaExpired bool) (SwapState, []walletaction.Action) {
	if state.Beta != Funded && state.Beta != IncorrectlyFunded {
		return state, nil
	}
	if !betaExpired {
		return state, nil
	}
	if state.betaRefundRequested {
		return state, nil
	}
	state.betaRefundRequested = true
	return state, []walletaction.Action{
		{Kind: walletaction.Refund, Leg: htlcparams.BetaLeg, Params: f.Params.Beta},
	}
}
