package walletaction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Fund:   "fund",
		Redeem: "redeem",
		Refund: "refund",
		Notify: "notify",
	}
	for kind, want := range cases {
		require.Equal(t, want, kind.String())
	}
}

func TestKindStringUnknown(t *testing.T) {
	require.Equal(t, "unknown", Kind(99).String())
}
