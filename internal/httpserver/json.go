package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/andrebq/blogbox/internal/logutil"
)

type (
	// Message is the body used by most non-data responses
	Message struct {
		Message string `json:"message"`
	}

	// Failure is the body used when the client should only see an error
	Failure struct {
		Error string `json:"error"`
	}
)

// WriteJSON encodes body as the response, failures to encode are only
// logged because the status line is already gone.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	buf, err := json.Marshal(body)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to encode response body")
		http.Error(w, `{"message":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf)
}

// ReadJSON decodes at most maxBytes of the request body into out
func ReadJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, out interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	return dec.Decode(out)
}

// InternalError logs err with the request logger and answers with a generic
// message, the details never leave the server.
func InternalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Msg(msg)
	WriteJSON(w, r, http.StatusInternalServerError, Message{Message: msg})
}
