// Package htlcparams defines the value-typed HTLC parameter model shared by
// both sides of an atomic swap, and the deterministic per-ledger derivations
// (script, bytecode, invoice) built from it.
package htlcparams

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hashlockd/swapd/pkg/helpers"
)

// LedgerKind identifies the family of ledger an HTLC lives on.
type LedgerKind string

const (
	UtxoChain      LedgerKind = "utxo"
	AccountChain   LedgerKind = "account"
	PaymentChannel LedgerKind = "channel"
)

// Role is which side of the swap the local party plays.
type Role string

const (
	Alice Role = "alice" // initiator, knows the secret, funds alpha
	Bob   Role = "bob"   // responder, learns the secret on-chain, funds beta
)

// Leg identifies which half of a swap an HTLC, Event, or Action concerns.
// Distinct from LedgerKind: alpha and beta can share a LedgerKind (e.g. a
// BTC<->LTC swap is UtxoChain on both legs), so Leg is the only reliable
// routing key.
type Leg string

const (
	AlphaLeg Leg = "alpha"
	BetaLeg  Leg = "beta"
)

// Identity is an opaque ledger-specific public key or address. What it
// actually holds (compressed pubkey bytes, a hex EVM address, a node pubkey)
// is a decision for the per-kind derivation, never inspected by the FSM.
type Identity []byte

func (i Identity) String() string { return fmt.Sprintf("%x", []byte(i)) }

// Errors raised at params-validation time. These are invariant violations
// (spec §7): the swap is rejected, no state is created.
var (
	ErrSameIdentity     = errors.New("htlcparams: redeem and refund identity must differ")
	ErrZeroQuantity     = errors.New("htlcparams: quantity must be positive")
	ErrExpiryNotFuture  = errors.New("htlcparams: expiry is not strictly in the future")
	ErrHashMismatch     = errors.New("htlcparams: alpha and beta secret hashes differ")
	ErrExpiryOrdering   = errors.New("htlcparams: alpha must expire strictly later than beta plus the safety margin")
	ErrUnknownLedgerKind = errors.New("htlcparams: unknown ledger kind")
)

// Expiry is an absolute expiry. Exactly one of Unix/Height is meaningful,
// selected by the ledger's convention (wall-clock timestamp for most account
// and UTXO chains, block height where the ledger prefers it). For a
// PaymentChannel HTLC this instead holds a CLTV delta and IsRelative is true.
type Expiry struct {
	Unix       int64 // seconds since epoch, 0 if unused
	Height     int64 // block height, 0 if unused
	IsHeight   bool  // true if Height is the meaningful field
	IsRelative bool  // true for channel CLTV deltas (relative, not absolute)
}

// After reports whether this expiry is strictly in the future relative to
// now/currentHeight. For relative (channel) expiries this is always true --
// the driver is responsible for tracking channel-local CLTV state itself.
func (e Expiry) After(now time.Time, currentHeight int64) bool {
	if e.IsRelative {
		return true
	}
	if e.IsHeight {
		return e.Height > currentHeight
	}
	return e.Unix > now.Unix()
}

// Params is a value-typed descriptor of one HTLC on one ledger (spec §3).
type Params struct {
	LedgerKind     LedgerKind
	Asset          Asset
	Quantity       uint64
	RedeemIdentity Identity
	RefundIdentity Identity
	SecretHash     SecretHash
	Expiry         Expiry
}

// Asset is an opaque ledger-specific asset handle: native coin, an ERC-20
// contract address, or a channel's balance denomination.
type Asset struct {
	Symbol   string // display symbol, e.g. "BTC", "USDC"
	Contract []byte // non-nil for token contracts on account chains
}

func (a Asset) IsNative() bool { return len(a.Contract) == 0 }

// Validate checks the per-HTLC invariants of spec §3. now is injected so
// callers can unit test against a fixed clock.
func (p Params) Validate(now time.Time, currentHeight int64) error {
	if len(p.RedeemIdentity) == 0 || len(p.RefundIdentity) == 0 {
		return fmt.Errorf("htlcparams: identities must be set")
	}
	if helpers.BytesEqual(p.RedeemIdentity, p.RefundIdentity) {
		return ErrSameIdentity
	}
	if p.Quantity == 0 {
		return ErrZeroQuantity
	}
	if !p.Expiry.After(now, currentHeight) {
		return ErrExpiryNotFuture
	}
	switch p.LedgerKind {
	case UtxoChain, AccountChain, PaymentChannel:
	default:
		return ErrUnknownLedgerKind
	}
	return nil
}

// SwapParams is the pair of HTLC descriptors plus swap-level identity
// (spec §3). Alpha is funded first, by Alice; Beta is funded second, by Bob.
type SwapParams struct {
	SwapID       uuid.UUID
	Role         Role
	Alpha        Params
	Beta         Params
	StartOfSwap  time.Time
	SafetyMargin time.Duration // wall-clock margin; ignored for height-based expiries, see SafetyMarginBlocks
	SafetyMarginBlocks int64
}

// NewSwapID generates a fresh 128-bit swap identifier.
func NewSwapID() uuid.UUID { return uuid.New() }

// Validate checks the per-HTLC invariants plus the cross-HTLC invariants of
// spec §3: matching secret hash, and alpha expiring strictly later than beta
// plus the configured safety margin.
func (sp SwapParams) Validate(now time.Time, alphaHeight, betaHeight int64) error {
	if err := sp.Alpha.Validate(now, alphaHeight); err != nil {
		return fmt.Errorf("alpha: %w", err)
	}
	if err := sp.Beta.Validate(now, betaHeight); err != nil {
		return fmt.Errorf("beta: %w", err)
	}
	if sp.Alpha.SecretHash != sp.Beta.SecretHash {
		return ErrHashMismatch
	}
	if err := sp.validateExpiryOrdering(); err != nil {
		return err
	}
	return nil
}

// validateExpiryOrdering enforces alpha.expiry > beta.expiry + safety_margin
// in whichever unit both expiries share (spec §3). Mixed-unit pairs (one
// wall-clock, one height) are ordered by comparing wall-clock projections is
// out of scope for the core engine -- callers must supply same-unit expiries
// when safety-margin checking matters across chains of different kinds; the
// height-based margin applies only when both sides are height-denominated.
func (sp SwapParams) validateExpiryOrdering() error {
	a, b := sp.Alpha.Expiry, sp.Beta.Expiry
	if a.IsRelative || b.IsRelative {
		// A payment-channel leg's expiry is a CLTV delta, not comparable to
		// an absolute expiry; ordering is enforced by the channel's own
		// route construction, outside this engine's scope.
		return nil
	}
	if a.IsHeight && b.IsHeight {
		marginBlocks := sp.SafetyMarginBlocks
		if marginBlocks <= 0 {
			marginBlocks = 10
		}
		if a.Height <= b.Height+marginBlocks {
			return ErrExpiryOrdering
		}
		return nil
	}
	if !a.IsHeight && !b.IsHeight {
		margin := sp.SafetyMargin
		if margin <= 0 {
			margin = time.Hour
		}
		if a.Unix <= b.Unix+int64(margin/time.Second) {
			return ErrExpiryOrdering
		}
		return nil
	}
	// Mixed unit: conservatively require beta to be in the past relative to
	// alpha's unit is meaningless without a block-time oracle; the caller
	// (swapd.Driver) is expected to normalize both expiries to wall-clock
	// before constructing SwapParams when the two ledgers disagree on unit.
	return nil
}
