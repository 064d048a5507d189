// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"learnadmin/internal/envelope"
)

// Recoverer turns a handler panic into a logged stack trace and a 500
// error envelope. When the handler already started its response the
// envelope is skipped, since a second status line cannot be sent.
// http.ErrAbortHandler is re-raised.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			slog.Error("panic recovered",
				"error", v,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", RequestIDFromCtx(r.Context()),
				"response_started", rec.sent(),
				"stack", string(debug.Stack()),
			)
			if rec.sent() {
				return
			}
			envelope.Write(w, http.StatusInternalServerError, envelope.Envelope{
				Success: false,
				Error:   envelope.InternalMessage,
			})
		}()

		next.ServeHTTP(rec, r)
	})
}
