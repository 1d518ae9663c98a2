package htlcparams

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func evmParams(t *testing.T) Params {
	t.Helper()
	_, hash, err := NewSecret()
	require.NoError(t, err)
	return Params{
		LedgerKind:     AccountChain,
		Asset:          Asset{Symbol: "ETH"},
		Quantity:       1_000_000_000_000_000_000,
		RedeemIdentity: Identity{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14},
		RefundIdentity: Identity{0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28, 0x29, 0x2a, 0x2b, 0x2c, 0x2d, 0x2e, 0x2f, 0x30, 0x31, 0x32, 0x33, 0x34},
		SecretHash:     hash,
		Expiry:         Expiry{Unix: time.Now().Add(time.Hour).Unix()},
	}
}

func TestDeriveEVMNative(t *testing.T) {
	p := evmParams(t)

	desc, err := DeriveEVM(p, big.NewInt(1))
	require.NoError(t, err)
	require.True(t, desc.IsNative)
	require.NotEmpty(t, desc.CreateCalldata)
	require.NotEqual(t, [32]byte{}, desc.SwapID)
}

func TestDeriveEVMERC20(t *testing.T) {
	p := evmParams(t)
	p.Asset = Asset{Symbol: "USDC", Contract: []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14}}

	desc, err := DeriveEVM(p, big.NewInt(1))
	require.NoError(t, err)
	require.False(t, desc.IsNative)
	require.NotEmpty(t, desc.CreateCalldata)
}

func TestDeriveEVMDeterministicSwapID(t *testing.T) {
	p := evmParams(t)

	d1, err := DeriveEVM(p, big.NewInt(7))
	require.NoError(t, err)
	d2, err := DeriveEVM(p, big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, d1.SwapID, d2.SwapID)

	d3, err := DeriveEVM(p, big.NewInt(8))
	require.NoError(t, err)
	require.NotEqual(t, d1.SwapID, d3.SwapID)
}

func TestDeriveEVMRejectsWrongLedgerKind(t *testing.T) {
	p := evmParams(t)
	p.LedgerKind = UtxoChain
	_, err := DeriveEVM(p, nil)
	require.Error(t, err)
}

func TestDeriveEVMRejectsRelativeExpiry(t *testing.T) {
	p := evmParams(t)
	p.Expiry = Expiry{IsRelative: true, Height: 40}
	_, err := DeriveEVM(p, nil)
	require.Error(t, err)
}

func TestDeriveEVMRejectsBadIdentityLength(t *testing.T) {
	p := evmParams(t)
	p.RedeemIdentity = Identity{0x01}
	_, err := DeriveEVM(p, nil)
	require.Error(t, err)
}

func TestRedeemAndRefundCalldata(t *testing.T) {
	p := evmParams(t)
	desc, err := DeriveEVM(p, big.NewInt(1))
	require.NoError(t, err)

	secret, _, err := NewSecret()
	require.NoError(t, err)

	claimCalldata, err := RedeemCalldata(desc.SwapID, secret)
	require.NoError(t, err)
	require.NotEmpty(t, claimCalldata)

	refundCalldata, err := RefundCalldata(desc.SwapID)
	require.NoError(t, err)
	require.NotEmpty(t, refundCalldata)
}
