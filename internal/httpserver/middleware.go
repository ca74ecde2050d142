package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/andrebq/blogbox/internal/logutil"
)

// Recover converts a panic inside next into a 500 response
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log := logutil.GetOrDefault(r.Context())
				log.Error().Err(fmt.Errorf("panic: %v", v)).Msg("Recovered from panic while serving request")
				WriteJSON(w, r, http.StatusInternalServerError, Message{Message: "Internal Server Error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// CORS allows credentialed requests coming from origin.
// An empty origin disables CORS headers entirely.
func CORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		h := w.Header()
		h.Add("Vary", "Origin")
		if r.Header.Get("Origin") != origin {
			next.ServeHTTP(w, r)
			return
		}
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", strings.Join([]string{
				http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodOptions,
			}, ","))
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
