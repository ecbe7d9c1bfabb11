// Package errors renders API errors as JSON with stable machine-readable
// codes, and logs the server-side ones.
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/app/system/errs"
)

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto a status code and a stable error code. Client
// mistakes come back verbatim; anything unclassified is logged and hidden
// behind a generic 500 body.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := errs.KindOf(err)
	status := errs.HTTPStatus(kind)

	message := errs.Message(kind)
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
	} else if err != nil && err.Error() != "" {
		message = err.Error()
	}

	body := errorBody{
		Error:   errs.Code(kind),
		Message: message,
	}
	WriteJSON(w, status, body)
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, errorBody{
		Error:   errs.Code(errs.NotFound),
		Message: "no such endpoint",
	})
}

// MethodNotAllowed is the router's fallback for bad verbs.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, errorBody{
		Error:   "method-not-allowed",
		Message: "method not allowed for this endpoint",
	})
}
