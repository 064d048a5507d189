// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON API handlers of the admin dashboard.
// Every entity route runs the same pipeline: read the body, normalize it
// to the camelCase shape, validate, map to the backend shape, forward one
// call to the content backend, map the reply back, and write an envelope.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"learnadmin/internal/backend"
	"learnadmin/internal/entity"
	"learnadmin/internal/envelope"
	"learnadmin/internal/fieldmap"
	"learnadmin/internal/middleware"
	"learnadmin/internal/storage"
	"learnadmin/internal/validate"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Forwarder sends one call to the content backend.
type Forwarder interface {
	Do(ctx context.Context, req backend.Request) (*backend.Response, error)
}

// Uploader stores media directly in object storage.
type Uploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, bool)
}

// API groups the entity handlers and their dependencies.
type API struct {
	backend       Forwarder
	uploader      Uploader
	uploadTimeout time.Duration
}

// NewAPI creates the handler group. uploader may be nil, in which case
// uploads are forwarded to the backend. uploadTimeout bounds each object
// storage call; zero means backend.DefaultUploadTimeout.
func NewAPI(fwd Forwarder, uploader Uploader, uploadTimeout time.Duration) *API {
	if uploadTimeout <= 0 {
		uploadTimeout = backend.DefaultUploadTimeout
	}
	return &API{backend: fwd, uploader: uploader, uploadTimeout: uploadTimeout}
}

// call forwards req with the caller's session token and request id.
func (a *API) call(r *http.Request, req backend.Request) (*backend.Response, error) {
	if req.Token == "" {
		req.Token = middleware.TokenFromCtx(r.Context())
	}
	return a.backend.Do(r.Context(), withRequestID(r, req))
}

// withRequestID propagates the inbound request id to the backend.
func withRequestID(r *http.Request, req backend.Request) backend.Request {
	id := middleware.RequestIDFromCtx(r.Context())
	if id == "" {
		return req
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set(middleware.RequestIDHeader, id)
	return req
}

// readBody decodes a JSON object request body. Malformed bodies are the
// caller's fault and answer 400.
func readBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var raw any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil, envelope.BadRequest("Request body is required")
		case errors.As(err, &tooLarge):
			return nil, &envelope.RequestError{Status: http.StatusRequestEntityTooLarge, Message: "Request body is too large"}
		}
		return nil, envelope.BadRequest("Request body must be valid JSON")
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, envelope.BadRequest("Request body must be a JSON object")
	}
	return obj, nil
}

// readRecord reads and normalizes a request body for def.
func readRecord(w http.ResponseWriter, r *http.Request, def *entity.Definition) (fieldmap.Record, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	rec, err := def.Normalize(body)
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, envelope.BadRequest(err.Error())
	}
	return rec, nil
}

// itemPath is the backend path of the record addressed by the {id} URL
// parameter, or the collection path for single-record entities.
func itemPath(def *entity.Definition, r *http.Request, action ...string) string {
	id := chi.URLParam(r, "id")
	if id == "" {
		return backend.Path(append([]string{def.Path}, action...)...)
	}
	return backend.Path(append([]string{def.Path, id}, action...)...)
}

// record maps a single-record reply. Backends that answer a write with an
// empty body get the submitted record echoed back.
func record(def *entity.Definition, data any, submitted fieldmap.Record) (fieldmap.Record, error) {
	if data == nil && submitted != nil {
		return def.ToDomain(def.ToBackend(submitted))
	}
	return def.ToDomain(data)
}
