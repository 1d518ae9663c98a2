package swapfsm

import (
	"testing"

	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/ledgerevent"
	"github.com/stretchr/testify/require"
)

func TestNextActionAliceHappyPath(t *testing.T) {
	sp, secret := testSwapParams(t)
	fsm := NewAliceFSM(sp, secret)

	state, _ := fsm.Start()
	require.Equal(t, PendingFund, NextAction(htlcparams.Alice, state))

	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	require.Equal(t, PendingNone, NextAction(htlcparams.Alice, state))

	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.BetaLeg})
	require.Equal(t, PendingRedeem, NextAction(htlcparams.Alice, state))

	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg})
	require.Equal(t, PendingNone, NextAction(htlcparams.Alice, state))
}

func TestNextActionAliceRefundAfterSafetyTrigger(t *testing.T) {
	sp, secret := testSwapParams(t)
	fsm := NewAliceFSM(sp, secret)

	state, _ := fsm.Start()
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})

	state, actions := fsm.CheckSafety(state, true)
	require.Len(t, actions, 1)
	require.Equal(t, PendingRefund, NextAction(htlcparams.Alice, state))

	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Refunded, Leg: htlcparams.AlphaLeg})
	require.Equal(t, PendingNone, NextAction(htlcparams.Alice, state))
}

func TestNextActionBobWaitsThenFundsThenRedeems(t *testing.T) {
	sp, secret := testSwapParams(t)
	fsm := NewBobFSM(sp)

	state, _ := fsm.Start()
	require.Equal(t, PendingNone, NextAction(htlcparams.Bob, state))

	state, actions := fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	require.Len(t, actions, 1)
	require.Equal(t, PendingFund, NextAction(htlcparams.Bob, state))

	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.BetaLeg})
	require.Equal(t, PendingNone, NextAction(htlcparams.Bob, state))

	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg, Secret: secret})
	require.Len(t, actions, 1)
	require.Equal(t, PendingRedeem, NextAction(htlcparams.Bob, state))

	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Redeemed, Leg: htlcparams.AlphaLeg})
	require.Equal(t, PendingNone, NextAction(htlcparams.Bob, state))
}

func TestNextActionBobAbortedNeverFunds(t *testing.T) {
	sp, _ := testSwapParams(t)
	fsm := NewBobFSM(sp)

	state, _ := fsm.Start()
	state = fsm.CheckFundDeadline(state, true)
	state, _ = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	require.Equal(t, PendingNone, NextAction(htlcparams.Bob, state))
}
