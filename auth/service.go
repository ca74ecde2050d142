package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"
)

type (
	// Identity is the single account that can publish posts
	Identity struct {
		ID           string   `json:"_id"`
		Username     string   `json:"username"`
		Email        string   `json:"email"`
		PasswordHash HashText `json:"-"`
	}

	// IdentityStore persists identities. InsertIdentity must fail with
	// ErrIdentityExists when the email is taken and FindIdentityByEmail
	// with ErrIdentityNotFound when nothing matches.
	IdentityStore interface {
		InsertIdentity(ctx context.Context, id Identity) (Identity, error)
		FindIdentityByEmail(ctx context.Context, email string) (Identity, error)
	}

	Registration struct {
		Username string
		Email    string
		Password PlainText
	}

	Credentials struct {
		Email    string
		Password PlainText
	}

	Session struct {
		Token     string
		ExpiresAt time.Time
		Subject   Subject
	}

	Service struct {
		admin      string
		identities IdentityStore
		hasher     *Hasher
		tokens     *TokenCodec

		dummy HashText
	}
)

// NewService hashes a throwaway password once so that logins for unknown
// emails cost as much as real ones.
func NewService(adminUsername string, identities IdentityStore, hasher *Hasher, tokens *TokenCodec) (*Service, error) {
	dummy, err := hasher.Hash(PlainText("blogbox: not a real password"))
	if err != nil {
		return nil, fmt.Errorf("auth: unable to prepare login hash, cause %w", err)
	}
	return &Service{
		admin:      adminUsername,
		identities: identities,
		hasher:     hasher,
		tokens:     tokens,
		dummy:      dummy,
	}, nil
}

// Register provisions the admin identity. Input shape is expected to be
// validated already. The returned identity never carries the hash.
func (s *Service) Register(ctx context.Context, reg Registration) (Identity, error) {
	if !s.CanRegister(reg.Username) {
		return Identity{}, ErrForbidden
	}
	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return Identity{}, fmt.Errorf("auth: unable to hash password, cause %w", err)
	}
	stored, err := s.identities.InsertIdentity(ctx, Identity{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, ErrIdentityExists) {
		return Identity{}, ErrIdentityExists
	} else if err != nil {
		return Identity{}, fmt.Errorf("auth: unable to store identity, cause %w", err)
	}
	stored.PasswordHash = nil
	return stored, nil
}

// Login checks cred and issues a session token. Unknown emails and wrong
// passwords both return ErrInvalidCredentials after a bcrypt comparison.
func (s *Service) Login(ctx context.Context, cred Credentials) (Session, error) {
	id, err := s.identities.FindIdentityByEmail(ctx, cred.Email)
	if errors.Is(err, ErrIdentityNotFound) {
		s.hasher.Verify(cred.Password, s.dummy)
		return Session{}, ErrInvalidCredentials
	} else if err != nil {
		return Session{}, fmt.Errorf("auth: unable to lookup identity, cause %w", err)
	}
	if !s.hasher.Verify(cred.Password, id.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}
	subject := Subject{ID: id.ID, Email: id.Email}
	token, expiresAt, err := s.tokens.Issue(subject)
	if err != nil {
		return Session{}, fmt.Errorf("auth: unable to issue session token, cause %w", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt, Subject: subject}, nil
}

// Tokens returns the codec used to issue session tokens
func (s *Service) Tokens() *TokenCodec {
	return s.tokens
}

// CanRegister reports whether username is the configured admin
func (s *Service) CanRegister(username string) bool {
	return subtle.ConstantTimeCompare([]byte(username), []byte(s.admin)) == 1
}
