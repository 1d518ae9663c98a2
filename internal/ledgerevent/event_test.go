package ledgerevent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Unknown:           "unknown",
		Deployed:          "deployed",
		Funded:            "funded",
		Redeemed:          "redeemed",
		Refunded:          "refunded",
		Expired:           "expired",
		IncorrectlyFunded: "incorrectly_funded",
	}
	for kind, want := range cases {
		require.Equal(t, want, kind.String())
	}
}
