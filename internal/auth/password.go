package auth

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies credentials with bcrypt. The cost is fixed at
// startup; each hash call salts randomly, so equal inputs produce distinct
// hashes.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher, clamping the cost into bcrypt's valid range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of the plaintext.
func (h *Hasher) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether the plaintext matches the stored hash. A mismatch
// is a boolean outcome, not an error.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
