// Package validate checks the shape of user input before it reaches
// any use-case. It only reports problems, it never rewrites input.
package validate

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLen = 5
	MinPasswordLen = 5
	// MaxPasswordBytes is the longest input bcrypt will accept
	MaxPasswordBytes = 72
)

type (
	// FieldError describes a single invalid field of a request body
	FieldError struct {
		Type     string `json:"type"`
		Path     string `json:"path"`
		Msg      string `json:"msg"`
		Location string `json:"location"`
	}

	// Errors is the response body of a request that failed validation
	Errors struct {
		Errors []FieldError `json:"errors"`
	}
)

func invalid(path, msg string) FieldError {
	return FieldError{Type: "field", Path: path, Msg: msg, Location: "body"}
}

// Registration validates the input of the registration use-case.
// The password is never echoed back.
func Registration(username, email, password string) []FieldError {
	var errs []FieldError
	if utf8.RuneCountInString(username) < MinUsernameLen {
		errs = append(errs, invalid("username", "Username must have at least 5 characters"))
	}
	if !IsEmail(email) {
		errs = append(errs, invalid("email", "Invalid email"))
	}
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLen:
		errs = append(errs, invalid("password", "Password must have at least 5 characters"))
	case len(password) > MaxPasswordBytes:
		errs = append(errs, invalid("password", "Password must have at most 72 bytes"))
	}
	return errs
}

// Post validates the fields required to create a post
func Post(title, text string) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(title) == "" {
		errs = append(errs, invalid("title", "Title is required"))
	}
	if strings.TrimSpace(text) == "" {
		errs = append(errs, invalid("text", "Text is required"))
	}
	return errs
}

// IsEmail accepts bare addresses (no display name) whose domain has at
// least one dot.
func IsEmail(email string) bool {
	if email == "" || strings.TrimSpace(email) != email {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// PostPatch validates a partial post update, absent fields are fine but
// present ones cannot be blank.
func PostPatch(title, text *string) []FieldError {
	var errs []FieldError
	if title != nil && strings.TrimSpace(*title) == "" {
		errs = append(errs, invalid("title", "Title is required"))
	}
	if text != nil && strings.TrimSpace(*text) == "" {
		errs = append(errs, invalid("text", "Text is required"))
	}
	return errs
}
