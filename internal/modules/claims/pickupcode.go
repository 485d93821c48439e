package claims

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const DefaultPickupCodeLen = 6

// GeneratePickupCode returns a fixed-length decimal code. Codes are not
// globally unique: verification is always scoped to (restaurantID, claimID),
// so a collision between two claims is harmless.
func GeneratePickupCode(length int) (string, error) {
	if length < 1 {
		length = DefaultPickupCodeLen
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate pickup code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
