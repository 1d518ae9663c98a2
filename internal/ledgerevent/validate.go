package ledgerevent

import (
	"errors"
	"fmt"

	"github.com/hashlockd/swapd/internal/htlcparams"
)

// ErrUnderfunded is the cross-chain analogue of comit's "PoorGuy": a funding
// observation whose value is less than Params requires. The swap must not
// proceed as if funded -- the caller maps this to an IncorrectlyFunded event.
var ErrUnderfunded = errors.New("ledgerevent: funding output value below required quantity")

// ErrWrongScript reports a funding observation that does not pay the
// expected HTLC script/address/swap ID at all.
var ErrWrongScript = errors.New("ledgerevent: funding output does not match expected HTLC commitment")

// FundingObservation is what a Watcher's chain-specific funding scan
// produces before it is cross-checked against the swap's own Params.
type FundingObservation struct {
	// ScriptOrAddress is the UTXO script/address, or the EVM contract +
	// swap ID, the funding output actually paid.
	ScriptOrAddress string
	Value           uint64
}

// ValidateFunding cross-checks an observed funding output against the
// expected commitment for p, mirroring validation.rs's
// is_contained_in_transaction: the output must pay the derived HTLC
// location, and its value must be at least the required quantity.
func ValidateFunding(p htlcparams.Params, expectedLocation string, obs FundingObservation) error {
	if obs.ScriptOrAddress != expectedLocation {
		return fmt.Errorf("%w: got %q, want %q", ErrWrongScript, obs.ScriptOrAddress, expectedLocation)
	}
	if obs.Value < p.Quantity {
		return fmt.Errorf("%w: got %d, want at least %d", ErrUnderfunded, obs.Value, p.Quantity)
	}
	return nil
}

// ClassifyFunding turns a funding cross-check result into the Event kind a
// driver should emit: Funded on success, IncorrectlyFunded otherwise. Per
// the frozen resolution for IncorrectlyFunded (open question, SPEC_FULL
// §11), that state is terminal -- the FSM never attempts a redeem against
// it, only a refund once the expiry passes.
func ClassifyFunding(p htlcparams.Params, expectedLocation string, obs FundingObservation) Kind {
	if err := ValidateFunding(p, expectedLocation, obs); err != nil {
		return IncorrectlyFunded
	}
	return Funded
}
