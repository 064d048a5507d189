// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"learnadmin/internal/envelope"
)

// KeyFunc derives the rate-limit bucket of a request.
type KeyFunc func(r *http.Request) string

// ByIP buckets requests by client address.
func ByIP(r *http.Request) string {
	return clientIP(r)
}

// loginPeekBytes caps how much of a login body is read to find the email.
const loginPeekBytes = 4 << 10

// ByLoginEmail buckets login attempts by client address and submitted
// email, so one address guessing passwords for many accounts and many
// addresses guessing one account are both throttled per pair. The body is
// restored for the handler.
func ByLoginEmail(r *http.Request) string {
	ip := clientIP(r)
	if r.Body == nil {
		return ip
	}
	head, err := io.ReadAll(io.LimitReader(r.Body, loginPeekBytes))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	if err != nil {
		return ip
	}

	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(head, &body) != nil {
		return ip
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ip
	}
	return ip + "|" + email
}

// attempts holds the request times of one bucket inside the window.
type attempts struct {
	mu    sync.Mutex
	times []time.Time
}

// prune drops times at or before cutoff and reports how many remain.
func (a *attempts) prune(cutoff time.Time) int {
	kept := a.times[:0]
	for _, ts := range a.times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	a.times = kept
	return len(kept)
}

// RateLimiter limits requests per bucket using a sliding window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*attempts
	limit   int
	window  time.Duration
	key     KeyFunc
	stopCh  chan struct{}
}

// NewRateLimiter allows limit requests per window for each bucket that
// key assigns. A nil key means ByIP. Idle buckets are swept in the
// background until Stop is called.
func NewRateLimiter(limit int, window time.Duration, key KeyFunc) *RateLimiter {
	if key == nil {
		key = ByIP
	}
	rl := &RateLimiter{
		buckets: make(map[string]*attempts),
		limit:   limit,
		window:  window,
		key:     key,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background sweep.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// allow records a request for key and reports whether it is within the limit.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	a, ok := rl.buckets[key]
	if !ok {
		a = &attempts{}
		rl.buckets[key] = a
	}
	rl.mu.Unlock()

	now := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.prune(now.Add(-rl.window)) >= rl.limit {
		return false
	}
	a.times = append(a.times, now)
	return true
}

// cleanup removes buckets with no request inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, a := range rl.buckets {
		a.mu.Lock()
		idle := a.prune(cutoff) == 0
		a.mu.Unlock()
		if idle {
			delete(rl.buckets, key)
		}
	}
}

// Middleware answers 429 with a Retry-After header once a bucket is full.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(rl.key(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			envelope.Fail(w, r, &envelope.RequestError{
				Status:  http.StatusTooManyRequests,
				Message: "Too many requests, please try again later",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the leftmost X-Forwarded-For address, then X-Real-IP,
// then the connection address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
