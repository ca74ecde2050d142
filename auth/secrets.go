package auth

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	AdminUsernameEnvVar = "ADMIN_USERNAME"
	SigningKeyEnvVar    = "JWT_SECRET"
)

type (
	// Secrets are loaded once, before serving any request, and never
	// change afterwards.
	Secrets struct {
		AdminUsername string `env:"ADMIN_USERNAME,required,notEmpty,unset"`
		SigningKey    string `env:"JWT_SECRET,required,notEmpty,unset"`
	}
)

// LoadSecrets reads the secrets from environ (or the process environment
// when environ is nil). The variables are removed from the process
// environment once read, so child processes never inherit them.
func LoadSecrets(environ map[string]string) (Secrets, error) {
	var s Secrets
	err := env.ParseWithOptions(&s, env.Options{Environment: environ})
	if err != nil {
		return Secrets{}, ConfigMissing{cause: err}
	}
	return s, nil
}

// String never prints the actual values
func (s Secrets) String() string {
	return fmt.Sprintf("Secrets{AdminUsername: %v, SigningKey: %v}", redact(s.AdminUsername), redact(s.SigningKey))
}

func (s Secrets) GoString() string {
	return s.String()
}

func redact(v string) string {
	if v == "" {
		return "<empty>"
	}
	return "<redacted>"
}
