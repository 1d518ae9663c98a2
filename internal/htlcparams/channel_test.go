package htlcparams

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

type stubChannelSigner struct {
	priv *btcec.PrivateKey
}

func (s stubChannelSigner) SignInvoiceDigest(hash []byte) ([]byte, error) {
	sig, err := btcec.SignCompact(s.priv, hash, true)
	if err != nil {
		return nil, err
	}
	return sig, nil
}

func channelParams(t *testing.T) Params {
	t.Helper()
	_, hash, err := NewSecret()
	require.NoError(t, err)
	return Params{
		LedgerKind: PaymentChannel,
		Asset:      Asset{Symbol: "BTC"},
		Quantity:   25000,
		SecretHash: hash,
		Expiry:     Expiry{IsRelative: true, Height: 40},
	}
}

func TestDeriveChannel(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	p := channelParams(t)
	created := time.Now()
	desc, err := DeriveChannel(p, &chaincfg.MainNetParams, priv.PubKey(), "atomic swap", created)
	require.NoError(t, err)
	require.NotNil(t, desc.Invoice)
	require.Empty(t, desc.PaymentRequest)
}

// TestDeriveChannelDeterministic covers the §4.1 purity/§8 round-trip
// property: two derivations against equal inputs, including an equal
// created timestamp, must produce an identical encoded invoice -- nothing
// in DeriveChannel may sample the clock itself.
func TestDeriveChannelDeterministic(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	p := channelParams(t)
	created := time.Now().Add(-time.Minute)

	desc1, err := DeriveChannel(p, &chaincfg.MainNetParams, priv.PubKey(), "atomic swap", created)
	require.NoError(t, err)
	signed1, err := SignInvoice(desc1, stubChannelSigner{priv: priv})
	require.NoError(t, err)

	desc2, err := DeriveChannel(p, &chaincfg.MainNetParams, priv.PubKey(), "atomic swap", created)
	require.NoError(t, err)
	signed2, err := SignInvoice(desc2, stubChannelSigner{priv: priv})
	require.NoError(t, err)

	require.Equal(t, signed1.PaymentRequest, signed2.PaymentRequest)
}

func TestDeriveChannelRejectsWrongLedgerKind(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	p := channelParams(t)
	p.LedgerKind = UtxoChain
	_, err = DeriveChannel(p, &chaincfg.MainNetParams, priv.PubKey(), "", time.Now())
	require.Error(t, err)
}

func TestDeriveChannelRejectsAbsoluteExpiry(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	p := channelParams(t)
	p.Expiry = Expiry{Unix: time.Now().Add(time.Hour).Unix()}
	_, err = DeriveChannel(p, &chaincfg.MainNetParams, priv.PubKey(), "", time.Now())
	require.Error(t, err)
}

func TestSignInvoiceAndDecode(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	p := channelParams(t)
	desc, err := DeriveChannel(p, &chaincfg.MainNetParams, priv.PubKey(), "atomic swap", time.Now())
	require.NoError(t, err)

	signed, err := SignInvoice(desc, stubChannelSigner{priv: priv})
	require.NoError(t, err)
	require.NotEmpty(t, signed.PaymentRequest)

	decoded, err := DecodeChannelInvoice(signed.PaymentRequest, &chaincfg.MainNetParams)
	require.NoError(t, err)
	require.Equal(t, p.SecretHash, decoded.SecretHash)
	require.Equal(t, PaymentChannel, decoded.LedgerKind)
}
