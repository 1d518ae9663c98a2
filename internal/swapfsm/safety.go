package swapfsm

import (
	"time"

	"github.com/hashlockd/swapd/internal/htlcparams"
)

// BetaRedeemDeadline is the wall-clock point after which Alice no longer
// attempts to redeem beta and relies on refunding alpha instead.
// It is derived from beta's own expiry, not alpha's: Alice needs enough of
// beta's lifetime left for her redeem to confirm, so the deadline sits
// one safety margin before beta's expiry, never after. Returns the zero
// Time when beta's expiry is height-based or relative (a payment-channel
// CLTV delta): neither converts to a wall-clock point without a block-time
// oracle this package doesn't have, so there is no deadline to enforce on
// this leg and callers must treat a zero return as "never".
func BetaRedeemDeadline(params htlcparams.SwapParams) time.Time {
	if params.Beta.Expiry.IsRelative || params.Beta.Expiry.IsHeight {
		return time.Time{}
	}
	margin := params.SafetyMargin
	if margin <= 0 {
		margin = time.Hour
	}
	return time.Unix(params.Beta.Expiry.Unix, 0).Add(-margin)
}

// FundDeadline is the wall-clock point by which alpha must be funded, or
// Bob must abort (never fund beta). Per spec.md §4.4.2 this is
// beta.expiry - 2*safety_margin: one margin is the same buffer
// BetaRedeemDeadline reserves for Alice's own redeem, the second is Bob's
// own buffer to redeem alpha afterward, so funding beta any later than
// this would leave Bob with less than a full safety margin of beta's
// lifetime to work with even in the best case. maxWait is used only as a
// fallback when beta's expiry is height-based or relative, neither of
// which this formula can project onto a wall-clock point.
func FundDeadline(params htlcparams.SwapParams, maxWait time.Duration) time.Time {
	beta := params.Beta.Expiry
	if beta.IsRelative || beta.IsHeight {
		return params.StartOfSwap.Add(maxWait)
	}
	margin := params.SafetyMargin
	if margin <= 0 {
		margin = time.Hour
	}
	return time.Unix(beta.Unix, 0).Add(-2 * margin)
}

// Expired reports whether p's expiry has passed as of now/currentHeight,
// the same test HtlcStatus transitions key off of. The driver calls this on
// each safety tick for the leg its role may refund (alpha for Alice, beta
// for Bob) and passes the result to CheckSafety.
func Expired(p htlcparams.Params, now time.Time, currentHeight int64) bool {
	return !p.Expiry.After(now, currentHeight)
}
