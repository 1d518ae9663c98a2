package swapfsm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/ledgerevent"
	"github.com/hashlockd/swapd/internal/walletaction"
)

// channelSwapParams builds a UTXO-alpha / PaymentChannel-beta pairing (the
// halight shape: Alice funds a UTXO HTLC, Bob pays a Lightning invoice that
// resolves only on the same secret). The FSM is leg-agnostic: it never reads
// LedgerKind, only Leg, so this exercises the same Step/CheckSafety code
// paths as an all-UTXO or all-account-chain pairing.
func channelSwapParams(t *testing.T) (htlcparams.SwapParams, htlcparams.Secret) {
	t.Helper()
	secret, hash, err := htlcparams.NewSecret()
	require.NoError(t, err)

	now := time.Now()
	return htlcparams.SwapParams{
		SwapID: htlcparams.NewSwapID(),
		Alpha: htlcparams.Params{
			LedgerKind: htlcparams.UtxoChain,
			Quantity:   100000,
			SecretHash: hash,
			Expiry:     htlcparams.Expiry{Unix: now.Add(3 * time.Hour).Unix()},
		},
		Beta: htlcparams.Params{
			LedgerKind: htlcparams.PaymentChannel,
			Quantity:   1_000_000,
			SecretHash: hash,
			Expiry:     htlcparams.Expiry{IsRelative: true, Height: 144},
		},
		StartOfSwap:  now,
		SafetyMargin: time.Hour,
	}, secret
}

func TestAliceFSMHalightPairingRedeemsOverPaymentChannel(t *testing.T) {
	sp, secret := channelSwapParams(t)
	fsm := NewAliceFSM(sp, secret)

	state, actions := fsm.Start()
	require.Equal(t, htlcparams.AlphaLeg, actions[0].Leg)
	require.Equal(t, htlcparams.UtxoChain, actions[0].Params.LedgerKind)

	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	require.Empty(t, actions)

	// Bob routes a Lightning payment; the watcher reports the channel leg
	// Funded once the HTLC is locked in on the channel.
	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.BetaLeg})
	require.Len(t, actions, 1)
	require.Equal(t, walletaction.Redeem, actions[0].Kind)
	require.Equal(t, htlcparams.BetaLeg, actions[0].Leg)
	require.Equal(t, htlcparams.PaymentChannel, actions[0].Params.LedgerKind)
	require.Equal(t, secret, actions[0].Secret)

	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg, Secret: secret})
	require.Empty(t, actions)
	require.Equal(t, Redeemed, state.Beta)
}

func TestBobFSMHalightPairingFundsChannelAfterAlphaFunded(t *testing.T) {
	sp, secret := channelSwapParams(t)
	sp.Role = htlcparams.Bob
	fsm := NewBobFSM(sp)

	state, actions := fsm.Start()
	require.Empty(t, actions)

	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg})
	require.Len(t, actions, 1)
	require.Equal(t, walletaction.Fund, actions[0].Kind)
	require.Equal(t, htlcparams.BetaLeg, actions[0].Leg)
	require.Equal(t, htlcparams.PaymentChannel, actions[0].Params.LedgerKind)

	// Alice redeems the Lightning-channel beta leg, revealing the secret;
	// Bob observes this on his beta watcher and extracts it to redeem alpha.
	state, actions = fsm.Step(state, ledgerevent.Event{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg, Secret: secret})
	require.Len(t, actions, 1)
	require.Equal(t, walletaction.Redeem, actions[0].Kind)
	require.Equal(t, htlcparams.AlphaLeg, actions[0].Leg)
	require.Equal(t, secret, actions[0].Secret)
	require.Equal(t, secret, *state.Secret)
}

// herc20SwapParams pairs an AccountChain alpha (an ERC-20 HTLC) with a
// PaymentChannel beta, the herc20 shape.
func herc20SwapParams(t *testing.T) (htlcparams.SwapParams, htlcparams.Secret) {
	t.Helper()
	secret, hash, err := htlcparams.NewSecret()
	require.NoError(t, err)

	now := time.Now()
	return htlcparams.SwapParams{
		SwapID: htlcparams.NewSwapID(),
		Alpha: htlcparams.Params{
			LedgerKind: htlcparams.AccountChain,
			Asset:      htlcparams.Asset{Symbol: "USDC", Contract: []byte{0xaa}},
			Quantity:   1_000_000,
			SecretHash: hash,
			Expiry:     htlcparams.Expiry{Unix: now.Add(3 * time.Hour).Unix()},
		},
		Beta: htlcparams.Params{
			LedgerKind: htlcparams.PaymentChannel,
			Quantity:   100000,
			SecretHash: hash,
			Expiry:     htlcparams.Expiry{IsRelative: true, Height: 144},
		},
		StartOfSwap:  now,
		SafetyMargin: time.Hour,
	}, secret
}

func TestAliceFSMHerc20PairingReorderingInvariance(t *testing.T) {
	sp, secret := herc20SwapParams(t)

	run := func(events []ledgerevent.Event) SwapState {
		fsm := NewAliceFSM(sp, secret)
		state, _ := fsm.Start()
		for _, ev := range events {
			state, _ = fsm.Step(state, ev)
		}
		return state
	}

	order1 := []ledgerevent.Event{
		{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg},
		{Kind: ledgerevent.Funded, Leg: htlcparams.BetaLeg},
		{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg},
	}
	order2 := []ledgerevent.Event{
		{Kind: ledgerevent.Funded, Leg: htlcparams.BetaLeg},
		{Kind: ledgerevent.Funded, Leg: htlcparams.AlphaLeg},
		{Kind: ledgerevent.Redeemed, Leg: htlcparams.BetaLeg},
	}

	s1 := run(order1)
	s2 := run(order2)
	require.Equal(t, s1.Alpha, s2.Alpha)
	require.Equal(t, s1.Beta, s2.Beta)
}
