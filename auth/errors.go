package auth

import (
	"errors"
	"fmt"
)

type (
	// ConfigMissing is returned at startup when a secret is absent,
	// the process must not serve requests without them.
	ConfigMissing struct {
		cause error
	}

	// Rejection tells why a session token was refused
	Rejection byte

	TokenRejected struct {
		Reason Rejection
		cause  error
	}
)

const (
	Malformed Rejection = iota + 1
	SignatureInvalid
	Expired
)

var (
	// ErrForbidden is returned when somebody other than the configured
	// admin tries to register.
	ErrForbidden = errors.New("auth: username is not allowed to register")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, callers must not be able to tell them apart.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrIdentityExists is returned when the email is already registered
	ErrIdentityExists = errors.New("auth: identity already exists")
	// ErrIdentityNotFound is returned by IdentityStore implementations
	ErrIdentityNotFound = errors.New("auth: identity not found")
)

func (c ConfigMissing) Error() string {
	return fmt.Sprintf("auth: missing required secrets (%v and %v), cause %v", AdminUsernameEnvVar, SigningKeyEnvVar, c.cause)
}

func (c ConfigMissing) Unwrap() error {
	return c.cause
}

func (r Rejection) String() string {
	switch r {
	case Malformed:
		return "malformed"
	case SignatureInvalid:
		return "signature invalid"
	case Expired:
		return "expired"
	}
	return fmt.Sprintf("Rejection(%d)", byte(r))
}

func (t TokenRejected) Error() string {
	if t.cause == nil {
		return fmt.Sprintf("auth: token rejected, %v", t.Reason)
	}
	return fmt.Sprintf("auth: token rejected, %v, cause %v", t.Reason, t.cause)
}

func (t TokenRejected) Unwrap() error {
	return t.cause
}

// Is matches TokenRejected values with the same reason, a target
// without reason matches any rejection.
func (t TokenRejected) Is(target error) bool {
	other, ok := target.(TokenRejected)
	if !ok {
		return false
	}
	return other.Reason == 0 || other.Reason == t.Reason
}
