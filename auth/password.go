package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordCost is the bcrypt work factor (2^10 rounds)
	PasswordCost = 10
)

type (
	PlainText []byte
	HashText  []byte

	Hasher struct {
		cost int
	}
)

func (p PlainText) Zero() {
	for i := range p {
		p[i] = 0
	}
}

func NewHasher() *Hasher {
	return &Hasher{cost: PasswordCost}
}

// Hash returns a salted bcrypt hash of passwd
func (h *Hasher) Hash(passwd PlainText) (HashText, error) {
	return bcrypt.GenerateFromPassword(passwd, h.cost)
}

// Verify reports whether passwd matches hash. The comparison runs in
// constant time and a malformed hash is just a mismatch.
func (h *Hasher) Verify(passwd PlainText, hash HashText) bool {
	return bcrypt.CompareHashAndPassword(hash, passwd) == nil
}
