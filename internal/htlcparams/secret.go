package htlcparams

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/hashlockd/swapd/pkg/helpers"
)

// Secret and SecretHash are always exactly 32 bytes (spec §3).
type Secret [32]byte
type SecretHash [32]byte

// NewSecret generates a fresh random 32-byte secret and its SHA-256 hash.
// Only the initiator (Alice) calls this, at swap creation.
func NewSecret() (Secret, SecretHash, error) {
	var s Secret
	if _, err := rand.Read(s[:]); err != nil {
		return Secret{}, SecretHash{}, fmt.Errorf("htlcparams: generate secret: %w", err)
	}
	return s, HashSecret(s), nil
}

// HashSecret computes SHA-256(secret), the sole cryptographic link between
// the two sides of a swap.
func HashSecret(s Secret) SecretHash {
	return SecretHash(sha256.Sum256(s[:]))
}

// VerifySecret reports whether hash(secret) == hash, in constant time.
func VerifySecret(s Secret, hash SecretHash) bool {
	got := HashSecret(s)
	return helpers.ConstantTimeCompare(got[:], hash[:])
}

func (h SecretHash) String() string { return fmt.Sprintf("%x", [32]byte(h)) }
func (s Secret) String() string     { return fmt.Sprintf("%x", [32]byte(s)) }
