package api

import (
	"net/http"
	"time"

	"github.com/andrebq/blogbox/auth"
	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/andrebq/blogbox/internal/logutil"
)

const (
	SessionCookieName = "jwt"
)

type (
	// GateReason tells why the gate refused a request
	GateReason byte

	// Verdict is the outcome of checking a request against the realm.
	// Subject is only meaningful when Reason is Admitted.
	Verdict struct {
		Reason  GateReason
		Status  int
		Subject auth.Subject
	}

	// Realm guards the operations that only the author can perform
	Realm struct {
		tokens *auth.TokenCodec
	}
)

const (
	Admitted GateReason = iota
	NoToken
	InvalidToken
)

func NewRealm(tokens *auth.TokenCodec) *Realm {
	return &Realm{tokens: tokens}
}

func (v Verdict) Authorized() bool {
	return v.Reason == Admitted
}

// Authenticate checks the session cookie of r. Expired and forged tokens
// get the same verdict.
func (s *Realm) Authenticate(r *http.Request) Verdict {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Verdict{Reason: NoToken, Status: http.StatusUnauthorized}
	}
	subject, err := s.tokens.Validate(cookie.Value)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Debug().Err(err).Msg("Session token rejected")
		return Verdict{Reason: InvalidToken, Status: http.StatusForbidden}
	}
	return Verdict{Reason: Admitted, Status: http.StatusOK, Subject: subject}
}

// Protect only calls sensitive for authenticated requests, the subject
// is available to it through auth.SubjectFrom.
func (s *Realm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verdict := s.Authenticate(r)
		switch verdict.Reason {
		case Admitted:
			sensitive.ServeHTTP(w, r.WithContext(auth.WithSubject(r.Context(), verdict.Subject)))
		case NoToken:
			httpserver.WriteJSON(w, r, verdict.Status, httpserver.Message{Message: "Access Denied: No token provided"})
		default:
			httpserver.WriteJSON(w, r, verdict.Status, httpserver.Message{Message: "Invalid or expired token"})
		}
	})
}

// SessionCookie carries token to the browser, scripts cannot read it
// and it is never sent over plain http.
func SessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie asks the browser to drop the session cookie
func ExpiredSessionCookie() *http.Cookie {
	c := SessionCookie("", 0)
	c.MaxAge = -1
	return c
}
