package htlcparams

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
)

// ChannelDescriptor is the derivation output for a PaymentChannel-kind HTLC:
// a BOLT-11 invoice carrying the same secret hash and expiry as Params, so
// the counterparty's FSM can route a payment that resolves to the identical
// on-ledger commitment as the UTXO/account-chain leg of the swap.
type ChannelDescriptor struct {
	Invoice *zpay32.Invoice
	// PaymentRequest is the invoice in its bech32-encoded wire form, once
	// signed; empty until SignInvoice is called.
	PaymentRequest string
}

// ChannelSigner signs the invoice's digest with the local node key,
// returning a 65-byte compact signature (header byte plus the 64-byte
// compact form, matching btcec.SignCompact). It is the payment-channel
// analogue of a UTXO/account-chain signing collaborator and is supplied by
// the caller, never implemented in this package.
type ChannelSigner interface {
	SignInvoiceDigest(hash []byte) ([]byte, error)
}

// DeriveChannel builds an unsigned BOLT-11 invoice for a channel-kind HTLC.
// net selects the invoice's currency prefix; cltvDelta is the minimum final
// CLTV expiry the receiving node requires, taken from Params.Expiry (which
// must be relative for a channel leg, per spec §4.1). created is the
// invoice's timestamp field -- callers pass their SwapParams.StartOfSwap
// rather than this function sampling the clock itself, so two derivations
// against equal inputs always produce byte-identical invoices (spec §4.1
// purity/determinism, §8 round-trip property).
func DeriveChannel(p Params, net *chaincfg.Params, destination *btcec.PublicKey, description string, created time.Time) (ChannelDescriptor, error) {
	if p.LedgerKind != PaymentChannel {
		return ChannelDescriptor{}, fmt.Errorf("htlcparams: DeriveChannel called on %s params", p.LedgerKind)
	}
	if !p.Expiry.IsRelative {
		return ChannelDescriptor{}, fmt.Errorf("htlcparams: channel HTLC expiry must be a relative CLTV delta")
	}
	if p.Expiry.Height <= 0 {
		return ChannelDescriptor{}, fmt.Errorf("htlcparams: channel HTLC requires a positive CLTV delta")
	}

	paymentHash := [32]byte(p.SecretHash)
	amount := lnwire.NewMSatFromSatoshis(btcutil.Amount(p.Quantity))

	invoice, err := zpay32.NewInvoice(
		net,
		paymentHash,
		created,
		zpay32.Amount(amount),
		zpay32.Destination(destination),
		zpay32.CLTVExpiry(uint64(p.Expiry.Height)),
		zpay32.Description(description),
	)
	if err != nil {
		return ChannelDescriptor{}, fmt.Errorf("htlcparams: build invoice: %w", err)
	}

	return ChannelDescriptor{Invoice: invoice}, nil
}

// SignInvoice encodes and signs the invoice, producing the final payment
// request string a Wallet action sends to the counterparty.
func SignInvoice(d ChannelDescriptor, signer ChannelSigner) (ChannelDescriptor, error) {
	encoded, err := d.Invoice.Encode(zpay32.MessageSigner{
		SignCompact: signer.SignInvoiceDigest,
	})
	if err != nil {
		return d, fmt.Errorf("htlcparams: encode invoice: %w", err)
	}
	d.PaymentRequest = encoded
	return d, nil
}

// DecodeChannelInvoice parses a received BOLT-11 payment request back into
// Params the local FSM can cross-check against its own expectations
// (secret hash, amount, CLTV delta) before acting on it.
func DecodeChannelInvoice(paymentRequest string, net *chaincfg.Params) (Params, error) {
	inv, err := zpay32.Decode(paymentRequest, net)
	if err != nil {
		return Params{}, fmt.Errorf("htlcparams: decode invoice: %w", err)
	}
	if inv.PaymentHash == nil {
		return Params{}, fmt.Errorf("htlcparams: invoice missing payment hash")
	}
	var quantity uint64
	if inv.MilliSat != nil {
		quantity = uint64(inv.MilliSat.ToSatoshis())
	}
	var redeemIdentity Identity
	if inv.Destination != nil {
		redeemIdentity = Identity(inv.Destination.SerializeCompressed())
	}
	return Params{
		LedgerKind:     PaymentChannel,
		Quantity:       quantity,
		SecretHash:     SecretHash(*inv.PaymentHash),
		RedeemIdentity: redeemIdentity,
		Expiry: Expiry{
			IsRelative: true,
			Height:     int64(inv.MinFinalCLTVExpiry()),
		},
	}, nil
}

