package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionTTL is how long a session token remains valid
	SessionTTL = time.Hour
)

type (
	// TokenCodec issues and validates session tokens with a symmetric key.
	// Claims are signed, not encrypted.
	TokenCodec struct {
		key []byte
		ttl time.Duration
		now func() time.Time
	}

	sessionClaims struct {
		Email string `json:"email"`
		jwt.RegisteredClaims
	}
)

var (
	validMethods = []string{jwt.SigningMethodHS256.Alg()}
)

func NewTokenCodec(key []byte, ttl time.Duration) *TokenCodec {
	k := make([]byte, len(key))
	copy(k, key)
	return &TokenCodec{key: k, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of tokens issued by this codec
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue returns a signed token for subject that expires after TTL
func (c *TokenCodec) Issue(subject Subject) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)
	claims := sessionClaims{
		Email: subject.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate checks the signature of token before looking at any claim,
// the returned error is always a TokenRejected.
func (c *TokenCodec) Validate(token string) (Subject, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods(validMethods),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now))
	if err != nil {
		return Subject{}, TokenRejected{Reason: rejectionFor(err), cause: err}
	}
	if claims.Subject == "" {
		return Subject{}, TokenRejected{Reason: Malformed}
	}
	return Subject{ID: claims.Subject, Email: claims.Email}, nil
}

func rejectionFor(err error) Rejection {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return SignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return Expired
	}
	return Malformed
}
