package swapfsm

import (
	"testing"

	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/ledgerevent"
	"github.com/hashlockd/swapd/internal/walletaction"
	"github.com/stretchr/testify/require"
)

func TestBobFSMStart(t *testing.T) {
	sp, _ := testSwapParams(t)
	fsm := NewBobFSM(sp)

	state, actions := fsm.Start()
	require.Empty(t, actions)
	require.Equal(t, NotDeployed, state.Alpha)
}

func TestBobFSMHappyPath(t *testing.T) {
	sp, secret := testSwapParams(t)
	fsm := NewBobFSM(sp)
	state, _ := fsm.Start()

	state, actions := fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Deployed, Leg: htlcparams.AlphaLeg})
	require.Empty(t, actions)

	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	require.Len(t, actions, 1)
	require.Equal(t, walletaction.Fund, actions[0].Kind)
	require.Equal(t, htlcparams.BetaLeg, actions[0].Leg)

	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Deployed, Leg: htlcparams.BetaLeg})
	require.Empty(t, actions)

	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.BetaLeg})
	require.Empty(t, actions)

	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg, Secret: secret})
	require.Len(t, actions, 1)
	require.Equal(t, walletaction.Redeem, actions[0].Kind)
	require.Equal(t, htlcparams.AlphaLeg, actions[0].Leg)
	require.Equal(t, secret, actions[0].Secret)
	require.NotNil(t, state.Secret)
	require.Equal(t, secret, *state.Secret)
}

func TestBobFSMNeverFundsOnIncorrectlyFundedAlpha(t *testing.T) {
	sp, _ := testSwapParams(t)
	fsm := NewBobFSM(sp)
	state, _ := fsm.Start()

	state, actions := fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.IncorrectlyFunded, Leg: htlcparams.AlphaLeg})
	require.Empty(t, actions)
	require.Equal(t, IncorrectlyFunded, state.Alpha)
}

func TestBobFSMRejectsWrongSecret(t *testing.T) {
	sp, _ := testSwapParams(t)
	fsm := NewBobFSM(sp)
	state, _ := fsm.Start()
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.BetaLeg})

	var wrongSecret htlcparams.Secret
	wrongSecret[0] = 0xFF

	state, actions := fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg, Secret: wrongSecret})
	require.Empty(t, actions)
	require.Nil(t, state.Secret)
}

func TestBobFSMDuplicateEventIdempotent(t *testing.T) {
	sp, secret := testSwapParams(t)
	fsm := NewBobFSM(sp)
	state, _ := fsm.Start()
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.BetaLeg})
	state, actions := fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg, Secret: secret})
	require.Len(t, actions, 1)

	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg, Secret: secret})
	require.Empty(t, actions)
}

func TestBobFSMFundDeadlineAbort(t *testing.T) {
	sp, _ := testSwapParams(t)
	fsm := NewBobFSM(sp)
	state, _ := fsm.Start()

	state = fsm.CheckFundDeadline(state, true)

	// Alpha funds after the deadline already elapsed -- Bob must not fund beta.
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Deployed, Leg: htlcparams.AlphaLeg})
	state, actions := fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	require.Empty(t, actions)
}

func TestBobFSMCheckSafetyRefundsBetaAfterExpiry(t *testing.T) {
	sp, _ := testSwapParams(t)
	fsm := NewBobFSM(sp)
	state, _ := fsm.Start()
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.BetaLeg})

	state, actions := fsm.CheckSafety(state, false)
	require.Empty(t, actions)

	state, actions = fsm.CheckSafety(state, true)
	require.Len(t, actions, 1)
	require.Equal(t, walletaction.Refund, actions[0].Kind)
	require.Equal(t, htlcparams.BetaLeg, actions[0].Leg)

	_, actions = fsm.CheckSafety(state, true)
	require.Empty(t, actions)
}

// TestBobFSMCheckSafetyRefundsIncorrectlyFundedBeta covers scenario D: Bob
// himself funded beta short of the required quantity, the watcher reports
// it IncorrectlyFunded, and Bob must still reclaim it once it expires.
func TestBobFSMCheckSafetyRefundsIncorrectlyFundedBeta(t *testing.T) {
	sp, _ := testSwapParams(t)
	fsm := NewBobFSM(sp)
	state, _ := fsm.Start()
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.IncorrectlyFunded, Leg: htlcparams.BetaLeg})

	_, actions := fsm.CheckSafety(state, true)
	require.Len(t, actions, 1)
	require.Equal(t, walletaction.Refund, actions[0].Kind)
	require.Equal(t, htlcparams.BetaLeg, actions[0].Leg)
}
