package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrebq/blogbox/auth"
	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/andrebq/blogbox/internal/validate"
	"github.com/julienschmidt/httprouter"
)

const (
	maxCredentialBody = 64 << 10
)

type (
	registerRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	registerResponse struct {
		Message string        `json:"message"`
		User    auth.Identity `json:"user"`
	}

	statusResponse struct {
		IsAuthenticated bool   `json:"isAuthenticated"`
		Message         string `json:"message,omitempty"`
		Error           string `json:"error,omitempty"`
	}

	handlers struct {
		svc     *auth.Service
		realm   *Realm
		limiter *limiterRegistry
	}
)

// AsHandler returns the handler for the session endpoints: register,
// login, logout and auth-status.
func AsHandler(ctx context.Context, svc *auth.Service, realm *Realm, throttle Throttle) (http.Handler, error) {
	if throttle.PerMinute <= 0 || throttle.Burst <= 0 {
		return nil, InvalidThrottle{Throttle: throttle}
	}
	h := &handlers{
		svc:     svc,
		realm:   realm,
		limiter: newLimiterRegistry(throttle),
	}
	router := httprouter.New()
	router.HandlerFunc("POST", "/api/register", h.register)
	router.HandlerFunc("POST", "/api/login", h.login)
	router.HandlerFunc("POST", "/api/logout", h.logout)
	router.HandlerFunc("GET", "/api/auth-status", h.authStatus)
	return router, nil
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpserver.ReadJSON(w, r, maxCredentialBody, &req); err != nil {
		httpserver.WriteJSON(w, r, http.StatusBadRequest, httpserver.Message{Message: "Invalid request body"})
		return
	}
	password := auth.PlainText(req.Password)
	defer password.Zero()
	req.Password = ""

	// non-admin usernames never learn which fields were wrong
	if !h.svc.CanRegister(req.Username) {
		forbidden(w, r)
		return
	}
	if errs := validate.Registration(req.Username, req.Email, string(password)); len(errs) > 0 {
		httpserver.WriteJSON(w, r, http.StatusBadRequest, validate.Errors{Errors: errs})
		return
	}

	id, err := h.svc.Register(r.Context(), auth.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: password,
	})
	switch {
	case errors.Is(err, auth.ErrForbidden):
		forbidden(w, r)
	case errors.Is(err, auth.ErrIdentityExists):
		httpserver.WriteJSON(w, r, http.StatusConflict, httpserver.Message{Message: "User already exists"})
	case err != nil:
		httpserver.InternalError(w, r, err, "Error registering user")
	default:
		httpserver.WriteJSON(w, r, http.StatusCreated, registerResponse{
			Message: "User registered successfully",
			User:    id,
		})
	}
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	httpserver.WriteJSON(w, r, http.StatusBadRequest, httpserver.Message{Message: "Can't register this user"})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(r) {
		httpserver.WriteJSON(w, r, http.StatusTooManyRequests, httpserver.Failure{Error: "Too many login attempts"})
		return
	}
	var req loginRequest
	if err := httpserver.ReadJSON(w, r, maxCredentialBody, &req); err != nil {
		httpserver.WriteJSON(w, r, http.StatusBadRequest, httpserver.Message{Message: "Invalid request body"})
		return
	}
	password := auth.PlainText(req.Password)
	defer password.Zero()
	req.Password = ""

	session, err := h.svc.Login(r.Context(), auth.Credentials{Email: req.Email, Password: password})
	if errors.Is(err, auth.ErrInvalidCredentials) {
		httpserver.WriteJSON(w, r, http.StatusUnauthorized, httpserver.Failure{Error: "Invalid credentials"})
		return
	} else if err != nil {
		httpserver.InternalError(w, r, err, "Error logging in")
		return
	}
	http.SetCookie(w, SessionCookie(session.Token, h.svc.Tokens().TTL()))
	httpserver.WriteJSON(w, r, http.StatusOK, statusResponse{
		IsAuthenticated: true,
		Message:         "Authentication Successful",
	})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, ExpiredSessionCookie())
	httpserver.WriteJSON(w, r, http.StatusOK, statusResponse{
		IsAuthenticated: false,
		Message:         "Logout Successful",
	})
}

func (h *handlers) authStatus(w http.ResponseWriter, r *http.Request) {
	verdict := h.realm.Authenticate(r)
	switch verdict.Reason {
	case Admitted:
		httpserver.WriteJSON(w, r, http.StatusOK, statusResponse{IsAuthenticated: true})
	case NoToken:
		httpserver.WriteJSON(w, r, http.StatusOK, statusResponse{IsAuthenticated: false})
	default:
		httpserver.WriteJSON(w, r, http.StatusUnauthorized, statusResponse{
			IsAuthenticated: false,
			Error:           "Invalid or expired token",
		})
	}
}
