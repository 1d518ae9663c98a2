package htlcparams

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSecretRoundTrip(t *testing.T) {
	secret, hash, err := NewSecret()
	require.NoError(t, err)
	require.True(t, VerifySecret(secret, hash))
}

func TestVerifySecretRejectsWrongSecret(t *testing.T) {
	_, hash, err := NewSecret()
	require.NoError(t, err)

	var other Secret
	other[0] = 0xFF
	require.False(t, VerifySecret(other, hash))
}

func TestHashSecretDeterministic(t *testing.T) {
	secret, hash, err := NewSecret()
	require.NoError(t, err)
	require.Equal(t, hash, HashSecret(secret))
}

func TestSecretsAreDistinct(t *testing.T) {
	s1, _, err := NewSecret()
	require.NoError(t, err)
	s2, _, err := NewSecret()
	require.NoError(t, err)
	require.NotEqual(t, s1, s2)
}
