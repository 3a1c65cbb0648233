// Package api defines the JSON response envelope and the error type shared
// by handlers, middleware and services. Every response carries a "status"
// discriminator ("success" or "error") so clients can branch uniformly.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Statuser provides HTTP status information for errors.
type Statuser interface {
	Status() (int, string)
}

// Error is a request-terminating failure with a client-visible message.
// It satisfies Statuser so handlers can map it to a response without
// inspecting the concrete condition.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Status returns the HTTP status code and message for the error.
func (e *Error) Status() (int, string) { return e.Code, e.Message }

func Unprocessable(message string) *Error {
	return &Error{Code: http.StatusUnprocessableEntity, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Code: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: http.StatusConflict, Message: message}
}

func BadRequest(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

func Internal(message string) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message}
}

// ErrorBody is the single error envelope used across the API, regardless of
// whether the failure originated in middleware or a domain service.
type ErrorBody struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// WriteJSON serializes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// the status code is already written; logging is all that's left
		log.Info().Msgf("failed to write JSON response: %v", err)
	}
}

// WriteError writes the error envelope for err. Errors that don't implement
// Statuser are reported as an opaque internal failure so internal details
// never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	code, message := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)

	var statuser Statuser
	if errors.As(err, &statuser) {
		code, message = statuser.Status()
	}

	WriteJSON(w, code, ErrorBody{
		Status:     "error",
		Message:    message,
		StatusCode: code,
	})
}
