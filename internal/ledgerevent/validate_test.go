package ledgerevent

import (
	"testing"

	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/stretchr/testify/require"
)

func TestValidateFundingAccepts(t *testing.T) {
	p := htlcparams.Params{Quantity: 1000}
	err := ValidateFunding(p, "bc1qexpected", FundingObservation{ScriptOrAddress: "bc1qexpected", Value: 1000})
	require.NoError(t, err)
}

func TestValidateFundingRejectsWrongLocation(t *testing.T) {
	p := htlcparams.Params{Quantity: 1000}
	err := ValidateFunding(p, "bc1qexpected", FundingObservation{ScriptOrAddress: "bc1qother", Value: 1000})
	require.ErrorIs(t, err, ErrWrongScript)
}

func TestValidateFundingRejectsUnderfunded(t *testing.T) {
	p := htlcparams.Params{Quantity: 1000}
	err := ValidateFunding(p, "bc1qexpected", FundingObservation{ScriptOrAddress: "bc1qexpected", Value: 999})
	require.ErrorIs(t, err, ErrUnderfunded)
}

func TestValidateFundingAcceptsOverfunded(t *testing.T) {
	p := htlcparams.Params{Quantity: 1000}
	err := ValidateFunding(p, "bc1qexpected", FundingObservation{ScriptOrAddress: "bc1qexpected", Value: 5000})
	require.NoError(t, err)
}

func TestClassifyFunding(t *testing.T) {
	p := htlcparams.Params{Quantity: 1000}
	require.Equal(t, Funded, ClassifyFunding(p, "bc1qexpected", FundingObservation{ScriptOrAddress: "bc1qexpected", Value: 1000}))
	require.Equal(t, IncorrectlyFunded, ClassifyFunding(p, "bc1qexpected", FundingObservation{ScriptOrAddress: "bc1qexpected", Value: 1}))
	require.Equal(t, IncorrectlyFunded, ClassifyFunding(p, "bc1qexpected", FundingObservation{ScriptOrAddress: "wrong", Value: 1000}))
}
