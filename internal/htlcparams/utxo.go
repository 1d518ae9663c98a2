package htlcparams

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// UtxoDescriptor is the deterministic derivation output for a UTXO-chain
// HTLC: the redeem script and the P2WSH address it hashes to (spec §4.1).
//
//	OP_IF
//	    OP_SHA256 <secret_hash> OP_EQUALVERIFY
//	    <redeem_pubkey> OP_CHECKSIG
//	OP_ELSE
//	    <expiry> OP_CHECKLOCKTIMEVERIFY OP_DROP
//	    <refund_pubkey> OP_CHECKSIG
//	OP_ENDIF
//
// Claim path: secret + redeemer signature. Refund path: refunder signature
// once the chain's median time/height passes <expiry>. <expiry> is p.Expiry
// itself (BIP65's dual-use field: a value under 500000000 is read as a
// block height, at or above it as a Unix timestamp, which is exactly
// Expiry.IsHeight's own split) -- never an independently supplied timeout,
// so DeriveUTXO is a pure function of p alone and the refund branch always
// agrees with the rest of the engine's expiry/safety-margin reasoning.
type UtxoDescriptor struct {
	Script     []byte
	ScriptHash [32]byte
	Address    string
}

// UtxoBech32HRP is the bech32 human-readable part used to derive the P2WSH
// address; callers populate it from their chain registry (e.g. "bc"/"tb"
// for Bitcoin, an analogous value for other Bitcoin-family chains) since
// this package has no chain registry of its own.
type UtxoBech32HRP string

// maxCLTVLocktime is BIP65's field width: a CScriptNum pushed for
// OP_CHECKLOCKTIMEVERIFY must fit in 5 bytes, but in practice every
// real locktime (height or Unix seconds) fits comfortably under 32 bits.
const maxCLTVLocktime = 0xFFFFFFFF

// DeriveUTXO computes the redeem script and P2WSH address for a UTXO-chain
// HTLC. The refund branch's timelock is p.Expiry itself, not a
// separately-supplied parameter (spec §4.1 purity/determinism: two calls
// against equal Params must produce byte-identical output).
func DeriveUTXO(p Params, hrp UtxoBech32HRP) (UtxoDescriptor, error) {
	if p.LedgerKind != UtxoChain {
		return UtxoDescriptor{}, fmt.Errorf("htlcparams: DeriveUTXO called on %s params", p.LedgerKind)
	}
	if p.Expiry.IsRelative {
		return UtxoDescriptor{}, fmt.Errorf("htlcparams: UTXO HTLC requires an absolute expiry")
	}
	locktime := p.Expiry.Unix
	if p.Expiry.IsHeight {
		locktime = p.Expiry.Height
	}
	if locktime <= 0 || locktime > maxCLTVLocktime {
		return UtxoDescriptor{}, fmt.Errorf("htlcparams: expiry out of CLTV range: %d", locktime)
	}
	if len(p.RedeemIdentity) != 33 || len(p.RefundIdentity) != 33 {
		return UtxoDescriptor{}, fmt.Errorf("htlcparams: UTXO identities must be 33-byte compressed pubkeys")
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_IF)
	builder.AddOp(txscript.OP_SHA256)
	builder.AddData(p.SecretHash[:])
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddData(p.RedeemIdentity)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ELSE)
	builder.AddInt64(locktime)
	builder.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddData(p.RefundIdentity)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ENDIF)

	script, err := builder.Script()
	if err != nil {
		return UtxoDescriptor{}, fmt.Errorf("htlcparams: build HTLC script: %w", err)
	}

	scriptHash := sha256.Sum256(script)
	params := &chaincfg.Params{Bech32HRPSegwit: string(hrp)}
	addr, err := btcutil.NewAddressWitnessScriptHash(scriptHash[:], params)
	if err != nil {
		return UtxoDescriptor{}, fmt.Errorf("htlcparams: derive P2WSH address: %w", err)
	}

	return UtxoDescriptor{
		Script:     script,
		ScriptHash: scriptHash,
		Address:    addr.EncodeAddress(),
	}, nil
}

// ClaimWitness builds the witness stack for spending the redeem (secret)
// branch: <sig> <secret> <1> <script>.
func ClaimWitness(sig []byte, secret Secret, script []byte) [][]byte {
	return [][]byte{sig, secret[:], {0x01}, script}
}

// RefundWitness builds the witness stack for spending the refund branch
// after expiry: <sig> <> <script>.
func RefundWitness(sig []byte, script []byte) [][]byte {
	return [][]byte{sig, {}, script}
}

// VerifyUTXOSignature checks a DER-encoded ECDSA signature against a
// compressed pubkey and message hash. Supported on chains (e.g. Decred
// forks) that verify against the alternate secp256k1 implementation rather
// than btcec's; both are bit-compatible curve operations over the same
// curve, exposed here so callers need not import both packages themselves.
func VerifyUTXOSignature(pubKey, sig, hash []byte) (bool, error) {
	pk, err := btcec.ParsePubKey(pubKey)
	if err == nil {
		parsedSig, sigErr := btcec.ParseDERSignature(sig)
		if sigErr == nil {
			return parsedSig.Verify(hash, pk), nil
		}
	}

	// Fall back to the Decred secp256k1 package for chains whose signer
	// produced a signature in its serialization conventions.
	dpk, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false, fmt.Errorf("htlcparams: parse pubkey: %w", err)
	}
	dsig, err := secp256k1.ParseDERSignature(sig)
	if err != nil {
		return false, fmt.Errorf("htlcparams: parse signature: %w", err)
	}
	return dsig.Verify(hash, dpk), nil
}
