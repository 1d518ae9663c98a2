package htlcparams

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"
)

func compressedPubKey(t *testing.T) []byte {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv.PubKey().SerializeCompressed()
}

func utxoParams(t *testing.T) Params {
	t.Helper()
	_, hash, err := NewSecret()
	require.NoError(t, err)
	return Params{
		LedgerKind:     UtxoChain,
		Asset:          Asset{Symbol: "BTC"},
		Quantity:       50000,
		RedeemIdentity: compressedPubKey(t),
		RefundIdentity: compressedPubKey(t),
		SecretHash:     hash,
		Expiry:         Expiry{Unix: time.Now().Add(time.Hour).Unix()},
	}
}

func TestDeriveUTXO(t *testing.T) {
	p := utxoParams(t)

	desc, err := DeriveUTXO(p, "bc")
	require.NoError(t, err)
	require.NotEmpty(t, desc.Script)
	require.NotEmpty(t, desc.Address)

	// Deterministic: same inputs produce the same script and address.
	desc2, err := DeriveUTXO(p, "bc")
	require.NoError(t, err)
	require.Equal(t, desc.Script, desc2.Script)
	require.Equal(t, desc.Address, desc2.Address)
}

// TestDeriveUTXOScriptTracksExpiry covers the §4.1 purity property from the
// other direction: changing p.Expiry (and nothing else) must change the
// derived script, since the refund branch's timelock comes from Expiry
// alone rather than some independent, unrelated parameter.
func TestDeriveUTXOScriptTracksExpiry(t *testing.T) {
	p := utxoParams(t)
	desc, err := DeriveUTXO(p, "bc")
	require.NoError(t, err)

	p2 := p
	p2.Expiry = Expiry{Unix: p.Expiry.Unix + 3600}
	desc2, err := DeriveUTXO(p2, "bc")
	require.NoError(t, err)

	require.NotEqual(t, desc.Script, desc2.Script)
	require.NotEqual(t, desc.Address, desc2.Address)
}

func TestDeriveUTXORejectsWrongLedgerKind(t *testing.T) {
	p := utxoParams(t)
	p.LedgerKind = AccountChain
	_, err := DeriveUTXO(p, "bc")
	require.Error(t, err)
}

func TestDeriveUTXORejectsRelativeExpiry(t *testing.T) {
	p := utxoParams(t)
	p.Expiry = Expiry{IsRelative: true, Height: 144}
	_, err := DeriveUTXO(p, "bc")
	require.Error(t, err)
}

func TestDeriveUTXORejectsMalformedIdentity(t *testing.T) {
	p := utxoParams(t)
	p.RedeemIdentity = Identity{0x01, 0x02}
	_, err := DeriveUTXO(p, "bc")
	require.Error(t, err)
}

func TestClaimAndRefundWitness(t *testing.T) {
	script := []byte{0xAB, 0xCD}
	sig := []byte{0x01, 0x02, 0x03}
	secret := Secret{0x11}

	claim := ClaimWitness(sig, secret, script)
	require.Equal(t, [][]byte{sig, secret[:], {0x01}, script}, claim)

	refund := RefundWitness(sig, script)
	require.Equal(t, [][]byte{sig, {}, script}, refund)
}

func TestVerifyUTXOSignatureBtcec(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hash := make([]byte, 32)
	hash[0] = 0x42

	sig := ecdsa.Sign(priv, hash)
	ok, err := VerifyUTXOSignature(priv.PubKey().SerializeCompressed(), sig.Serialize(), hash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyUTXOSignatureRejectsWrongHash(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hash := make([]byte, 32)
	hash[0] = 0x42

	sig := ecdsa.Sign(priv, hash)
	wrongHash := make([]byte, 32)
	wrongHash[0] = 0x43

	ok, err := VerifyUTXOSignature(priv.PubKey().SerializeCompressed(), sig.Serialize(), wrongHash)
	require.NoError(t, err)
	require.False(t, ok)
}
