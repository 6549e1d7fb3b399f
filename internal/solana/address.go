package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidateAddress checks that s is a base58-encoded 32-byte Solana address.
func ValidateAddress(s string) error {
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode address %q: %w", s, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address %q: expected 32 bytes, got %d", s, len(decoded))
	}
	return nil
}

// IsOnCurve reports whether the address is a valid ed25519 curve point.
// Program-derived addresses (pool vaults, AMM authorities) are off-curve;
// wallet addresses are on-curve.
func IsOnCurve(address string) (bool, error) {
	decoded, err := base58.Decode(address)
	if err != nil {
		return false, fmt.Errorf("decode address %q: %w", address, err)
	}
	if len(decoded) != 32 {
		return false, fmt.Errorf("address %q: expected 32 bytes, got %d", address, len(decoded))
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil, nil
}
