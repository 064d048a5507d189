// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMalformedResponse marks a 2xx reply whose body is not valid JSON.
var ErrMalformedResponse = errors.New("malformed backend response")

// Error is a failed backend call. Only Message is meant for callers:
// it is what the envelope layer classifies and what the dashboard shows.
// Status is kept for logs.
type Error struct {
	Message string
	Status  int // 0 when no response was received
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// decode turns a raw reply into a Response or an *Error.
//
// Two body shapes are accepted: an envelope object carrying "success"
// (data, message, meta, and stats are read from it), or any other JSON
// value, which is taken as the data itself.
func decode(status int, body []byte) (*Response, error) {
	ok := status >= 200 && status < 300
	body = bytes.TrimSpace(body)

	if len(body) == 0 {
		if !ok {
			return nil, &Error{Message: statusMessage(status), Status: status}
		}
		return &Response{Status: status}, nil
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		if !ok {
			return nil, &Error{Message: statusMessage(status), Status: status}
		}
		return nil, &Error{
			Message: "Content backend returned an unreadable response",
			Status:  status,
			Err:     fmt.Errorf("%w: %v", ErrMalformedResponse, err),
		}
	}

	obj, isObject := parsed.(map[string]any)
	if !isObject {
		if !ok {
			return nil, &Error{Message: statusMessage(status), Status: status}
		}
		return &Response{Status: status, Data: parsed}, nil
	}

	success, hasSuccess := obj["success"].(bool)
	if !ok || (hasSuccess && !success) {
		msg := errorMessage(obj)
		if msg == "" {
			msg = statusMessage(status)
		}
		return nil, &Error{Message: msg, Status: status}
	}

	if !hasSuccess {
		return &Response{Status: status, Data: obj}, nil
	}

	resp := &Response{Status: status, Data: obj["data"]}
	resp.Message, _ = obj["message"].(string)
	resp.Meta, _ = obj["meta"].(map[string]any)
	resp.Stats, _ = obj["stats"].(map[string]any)
	return resp, nil
}

// errorMessage extracts the backend's explanation from an error body.
// "error" may be a string or an object with its own "message".
func errorMessage(obj map[string]any) string {
	switch e := obj["error"].(type) {
	case string:
		if strings.TrimSpace(e) != "" {
			return e
		}
	case map[string]any:
		if m, _ := e["message"].(string); m != "" {
			return m
		}
	}
	for _, key := range []string{"message", "detail"} {
		if m, _ := obj[key].(string); strings.TrimSpace(m) != "" {
			return m
		}
	}
	return ""
}

// statusMessage describes a failed status when the backend gave no text.
// 404 and 409 are phrased so the message-based classifier still maps them
// back to the same status.
func statusMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Resource not found (HTTP 404)"
	case http.StatusConflict:
		return "Resource already exists (HTTP 409)"
	}
	text := http.StatusText(status)
	if text == "" {
		text = "Request failed"
	}
	return fmt.Sprintf("%s (HTTP %d)", text, status)
}
