// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"learnadmin/internal/backend"
	"learnadmin/internal/envelope"
	"learnadmin/internal/fieldmap"
	"learnadmin/internal/middleware"
	"learnadmin/internal/session"
	"learnadmin/internal/validate"
)

const invalidCredentials = "Invalid email or password"

// Sessions manages admin login sessions.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth handles login and logout against the backend auth endpoint.
type Auth struct {
	backend  Forwarder
	sessions Sessions
}

// NewAuth creates the auth handler group. sessions may be nil when
// authentication is disabled; login then answers 503.
func NewAuth(fwd Forwarder, sessions Sessions) *Auth {
	return &Auth{backend: fwd, sessions: sessions}
}

var loginRules = []validate.Field{
	{Name: "email", Label: "Email", Rules: []validate.Rule{
		validate.Required(),
		validate.MaxLen(254),
		validate.Pattern(`^[^@\s]+@[^@\s]+\.[^@\s]+$`, "Email address is invalid"),
	}},
	{Name: "password", Label: "Password", Rules: []validate.Rule{validate.Required()}},
}

// sessionUser is the user shape returned to the dashboard.
type sessionUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func userOf(data *session.Data) sessionUser {
	return sessionUser{ID: data.UserID, Email: data.Email, Name: data.Name, Role: data.Role, ExpiresAt: data.ExpiresAt}
}

// Login validates credentials, exchanges them for a backend token and
// opens a session holding it.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	if a.sessions == nil {
		envelope.Fail(w, r, &envelope.RequestError{Status: http.StatusServiceUnavailable, Message: "Sessions are not available"})
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		envelope.Fail(w, r, err)
		return
	}
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	creds := map[string]any{"email": strings.ToLower(strings.TrimSpace(email)), "password": password}
	if err := validate.Validate("", loginRules, creds, validate.Create); err != nil {
		envelope.Fail(w, r, err)
		return
	}

	resp, err := a.backend.Do(r.Context(), withRequestID(r, backend.Request{
		Method: http.MethodPost,
		Path:   "auth/login",
		Body:   creds,
	}))
	if err != nil {
		var be *backend.Error
		if errors.As(err, &be) && (be.Status == http.StatusBadRequest || be.Status == http.StatusUnauthorized || be.Status == http.StatusForbidden) {
			slog.Warn("login rejected", "email", creds["email"], "backend_status", be.Status)
			envelope.Fail(w, r, envelope.Unauthorized(invalidCredentials))
			return
		}
		envelope.Fail(w, r, err)
		return
	}

	data, err := loginSession(resp.Data)
	if err != nil {
		envelope.Fail(w, r, err)
		return
	}
	if data.Email == "" {
		data.Email = creds["email"].(string)
	}

	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		if errors.Is(err, session.ErrTokenExpired) {
			envelope.Fail(w, r, envelope.Unauthorized("Login token has already expired"))
			return
		}
		envelope.Fail(w, r, fmt.Errorf("login: %w", err))
		return
	}

	slog.Info("admin logged in", "email", data.Email, "role", data.Role)
	envelope.OK(w, http.StatusOK, userOf(data), "Logged in successfully")
}

// loginSession reads the token and user from a backend login reply.
func loginSession(raw any) (*session.Data, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: login reply is not an object", backend.ErrMalformedResponse)
	}

	token := fieldmap.String(obj, "token")
	if token == "" {
		token = fieldmap.String(obj, "access_token")
	}
	if token == "" {
		return nil, fmt.Errorf("%w: login reply carries no token", backend.ErrMalformedResponse)
	}

	data := &session.Data{Token: token}
	if user, ok := obj["user"].(map[string]any); ok {
		data.UserID = idString(user["id"])
		data.Email = fieldmap.String(user, "email")
		data.Name = fieldmap.String(user, "name")
		data.Role = fieldmap.String(user, "role")
	}
	return data, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	}
	return fmt.Sprint(v)
}

// Logout ends the session. The backend logout call is best-effort.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		req := backend.Request{Method: http.MethodPost, Path: "auth/logout", Token: sess.Token}
		if _, err := a.backend.Do(r.Context(), withRequestID(r, req)); err != nil {
			slog.Warn("backend logout failed", "error", err, "email", sess.Email)
		}
	}

	if a.sessions != nil {
		if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
			slog.Error("failed to destroy session", "error", err)
		}
	}
	envelope.OK(w, http.StatusOK, nil, "Logged out successfully")
}

// Session reports the signed-in admin.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		envelope.Fail(w, r, envelope.Unauthorized("Not authenticated"))
		return
	}
	envelope.OK(w, http.StatusOK, userOf(sess), "")
}
