package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"learnadmin/internal/middleware"
	"learnadmin/internal/session"
)

// memSessions records created and destroyed sessions.
type memSessions struct {
	created   []*session.Data
	destroyed int
	err       error
}

func (m *memSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data.ExpiresAt = time.Now().Add(time.Hour)
	m.created = append(m.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sid"})
	return "sid", nil
}

func (m *memSessions) Destroy(_ context.Context, _ http.ResponseWriter, _ *http.Request) error {
	m.destroyed++
	return nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestLogin(t *testing.T) {
	fb := newFakeBackend(t)
	sessions := &memSessions{}
	auth := NewAuth(fb.client(), sessions)
	token := signedToken(t, time.Now().Add(2*time.Hour))
	fb.respond("POST /api/auth/login", http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"access_token": token,
			"user":         map[string]any{"id": 12, "email": "admin@learn.test", "name": "Ada", "role": "admin"},
		},
	})

	w := serve(auth.Login, "POST", "/auth/login", "/auth/login",
		map[string]any{"email": "  Admin@Learn.test ", "password": "hunter22"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if len(sessions.created) != 1 {
		t.Fatalf("sessions created = %d, want 1", len(sessions.created))
	}
	got := sessions.created[0]
	if got.Token != token || got.UserID != "12" || got.Role != "admin" {
		t.Errorf("session = %+v", got)
	}

	sent := fb.lastCall().Body
	if sent["email"] != "admin@learn.test" || sent["password"] != "hunter22" {
		t.Errorf("backend body = %v", sent)
	}

	data := dataObject(t, decodeEnvelope(t, w))
	if data["email"] != "admin@learn.test" || data["name"] != "Ada" {
		t.Errorf("data = %v", data)
	}
	if _, ok := data["token"]; ok {
		t.Error("token leaked to the client")
	}
	if w.Result().Cookies()[0].Name != session.CookieName {
		t.Error("session cookie not set")
	}
}

func TestLoginValidation(t *testing.T) {
	fb := newFakeBackend(t)
	auth := NewAuth(fb.client(), &memSessions{})

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"missing email", map[string]any{"password": "x"}, "Email is required"},
		{"bad email", map[string]any{"email": "nope", "password": "x"}, "Email address is invalid"},
		{"missing password", map[string]any{"email": "a@b.co"}, "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(auth.Login, "POST", "/auth/login", "/auth/login", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := decodeEnvelope(t, w).Error; got != tt.want {
				t.Errorf("error = %q, want %q", got, tt.want)
			}
		})
	}
	if n := fb.callCount(); n != 0 {
		t.Errorf("backend called %d times, want 0", n)
	}
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      any
		sessErr   error
		wantCode  int
		wantError string
	}{
		{"rejected", http.StatusUnauthorized, map[string]any{"success": false, "message": "bad password"}, nil, http.StatusUnauthorized, "Invalid email or password"},
		{"forbidden", http.StatusForbidden, map[string]any{"message": "account locked"}, nil, http.StatusUnauthorized, "Invalid email or password"},
		{"backend down", http.StatusBadGateway, map[string]any{"message": "upstream"}, nil, http.StatusInternalServerError, "Internal server error"},
		{"no token", http.StatusOK, map[string]any{"success": true, "data": map[string]any{"user": map[string]any{}}}, nil, http.StatusInternalServerError, "Internal server error"},
		{"expired token", http.StatusOK, map[string]any{"success": true, "data": map[string]any{"token": "x"}}, session.ErrTokenExpired, http.StatusUnauthorized, "Login token has already expired"},
		{"session store down", http.StatusOK, map[string]any{"success": true, "data": map[string]any{"token": "x"}}, fmt.Errorf("session store: %w", context.DeadlineExceeded), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t)
			fb.respond("POST /api/auth/login", tt.status, tt.body)
			auth := NewAuth(fb.client(), &memSessions{err: tt.sessErr})

			w := serve(auth.Login, "POST", "/auth/login", "/auth/login",
				map[string]any{"email": "a@b.co", "password": "secret"})

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if got := decodeEnvelope(t, w).Error; got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestLoginWithoutSessions(t *testing.T) {
	fb := newFakeBackend(t)
	auth := NewAuth(fb.client(), nil)

	w := serve(auth.Login, "POST", "/auth/login", "/auth/login", map[string]any{"email": "a@b.co", "password": "x"})

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, data))
}

func TestLogout(t *testing.T) {
	fb := newFakeBackend(t)
	fb.respond("POST /api/auth/logout", http.StatusInternalServerError, map[string]any{"message": "boom"})
	sessions := &memSessions{}
	auth := NewAuth(fb.client(), sessions)

	r := withSession(httptest.NewRequest("POST", "/auth/logout", nil), &session.Data{Token: "tok-1", Email: "a@b.co"})
	w := httptest.NewRecorder()
	auth.Logout(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if sessions.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", sessions.destroyed)
	}
	if got := fb.lastCall().Header.Get("Authorization"); got != "Bearer tok-1" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestSession(t *testing.T) {
	auth := NewAuth(newFakeBackend(t).client(), &memSessions{})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		auth.Session(w, httptest.NewRequest("GET", "/auth/session", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("signed in", func(t *testing.T) {
		r := withSession(httptest.NewRequest("GET", "/auth/session", nil), &session.Data{UserID: "3", Email: "a@b.co", Role: "editor", Token: "secret"})
		w := httptest.NewRecorder()
		auth.Session(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		data := dataObject(t, decodeEnvelope(t, w))
		if data["id"] != "3" || data["role"] != "editor" {
			t.Errorf("data = %v", data)
		}
		if _, ok := data["token"]; ok {
			t.Error("token leaked to the client")
		}
	})
}
