// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package envelope writes the uniform JSON response shape used by every
// admin API route and maps failures to HTTP status codes.
package envelope

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"learnadmin/internal/backend"
	"learnadmin/internal/fieldmap"
	"learnadmin/internal/validate"
)

// InternalMessage is what callers see for any 500.
const InternalMessage = "Internal server error"

// Envelope is the response body of every /api route.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Meta    *Meta          `json:"meta,omitempty"`
	Stats   map[string]any `json:"stats,omitempty"`
}

// Meta describes one page of a list.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// RequestError is a failure detected before any backend call, carrying
// its own status (bad JSON body, missing session).
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// BadRequest returns a 400 RequestError.
func BadRequest(msg string) error {
	return &RequestError{Status: http.StatusBadRequest, Message: msg}
}

// Unauthorized returns a 401 RequestError.
func Unauthorized(msg string) error {
	return &RequestError{Status: http.StatusUnauthorized, Message: msg}
}

// Write encodes env with the given status code.
func Write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// OK writes a success envelope around data.
func OK(w http.ResponseWriter, status int, data any, message string) {
	Write(w, status, Envelope{Success: true, Data: data, Message: message})
}

// List writes a success envelope for a page of records.
func List(w http.ResponseWriter, data any, meta Meta, stats map[string]any) {
	Write(w, http.StatusOK, Envelope{Success: true, Data: data, Meta: &meta, Stats: stats})
}

// Fail classifies err, logs server-side failures, and writes the error
// envelope. The detail of a 500 is never sent to the client.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		attrs := []any{
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get("X-Request-ID"),
		}
		var be *backend.Error
		if errors.As(err, &be) && be.Status != 0 {
			attrs = append(attrs, "backend_status", be.Status)
		}
		slog.Error("request failed", attrs...)
		msg = InternalMessage
	}
	Write(w, status, Envelope{Success: false, Error: msg})
}

// Status maps an error to the HTTP status it answers with.
//
// Backend failures only carry a message, so they are classified by
// substring: "not found" is 404, "already exists" or "existing topics"
// is 409, anything else is 500.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	var ve *validate.Error
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	if errors.Is(err, fieldmap.ErrInvalidPayload) || errors.Is(err, backend.ErrMalformedResponse) {
		return http.StatusInternalServerError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "already exists"), strings.Contains(msg, "existing topics"):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
