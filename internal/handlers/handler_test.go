// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests:
// an httptest content backend that records every call, and helpers to
// drive a handler through a chi router so URL parameters resolve.
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"learnadmin/internal/backend"
)

// backendCall is one request received by the fake backend.
type backendCall struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   map[string]any
	Raw    []byte
}

// fakeBackend is an in-memory content backend. Routes are keyed by
// "METHOD /path"; unknown routes answer 404.
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server
	mu     sync.Mutex
	calls  []backendCall
	routes map[string]http.HandlerFunc
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{t: t, routes: map[string]http.HandlerFunc{}}
	fb.server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	call := backendCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Raw:    raw,
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(raw, &call.Body)
	}

	fb.mu.Lock()
	fb.calls = append(fb.calls, call)
	h, ok := fb.routes[r.Method+" "+r.URL.Path]
	fb.mu.Unlock()

	if !ok {
		reply(w, http.StatusNotFound, map[string]any{"success": false, "message": "Route not found"})
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	h(w, r)
}

// on registers a handler for "METHOD /path".
func (fb *fakeBackend) on(route string, h http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[route] = h
}

// respond registers a fixed JSON reply.
func (fb *fakeBackend) respond(route string, status int, body any) {
	fb.on(route, func(w http.ResponseWriter, _ *http.Request) {
		reply(w, status, body)
	})
}

func (fb *fakeBackend) callCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.calls)
}

func (fb *fakeBackend) lastCall() backendCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.calls) == 0 {
		fb.t.Fatal("backend was not called")
	}
	return fb.calls[len(fb.calls)-1]
}

func (fb *fakeBackend) client() *backend.Client {
	return backend.New(backend.Options{BaseURL: fb.server.URL + "/api"})
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// newTestAPI returns an API forwarding to a fresh fake backend.
func newTestAPI(t *testing.T) (*API, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend(t)
	return NewAPI(fb.client(), nil, 0), fb
}

// serve routes one request to h registered under pattern.
func serve(h http.HandlerFunc, method, pattern, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	r := chi.NewRouter()
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// testEnvelope mirrors the response envelope with typed fields for
// assertions.
type testEnvelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data"`
	Message string         `json:"message"`
	Error   string         `json:"error"`
	Meta    map[string]any `json:"meta"`
	Stats   map[string]any `json:"stats"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, w.Body.String())
	}
	return env
}

func dataObject(t *testing.T, env testEnvelope) map[string]any {
	t.Helper()
	obj, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", env.Data)
	}
	return obj
}

func dataList(t *testing.T, env testEnvelope) []any {
	t.Helper()
	list, ok := env.Data.([]any)
	if !ok {
		t.Fatalf("data is %T, want list", env.Data)
	}
	return list
}
