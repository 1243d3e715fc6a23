package infra

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptVerifier hashes and checks customer passwords.
type BcryptVerifier struct {
	Cost int
}

func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{Cost: cost}
}

func (v *BcryptVerifier) Hash(senha string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(senha), v.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

// Compare returns nil when senha matches hash.
func (v *BcryptVerifier) Compare(hash, senha string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha))
}
