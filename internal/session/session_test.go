package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client connected to the test Valkey.
// Skips the test if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test keys.
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// signedToken returns an HS256 JWT expiring at exp.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("expected session cookie to be set")
	return nil
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, ok := TokenExpiry(signedToken(t, exp))
	if !ok {
		t.Fatal("expected exp claim to be read")
	}
	if !got.Equal(exp) {
		t.Errorf("exp = %v, want %v", got, exp)
	}

	if _, ok := TokenExpiry("opaque-api-token"); ok {
		t.Error("opaque token should report no expiry")
	}
	if _, ok := TokenExpiry(""); ok {
		t.Error("empty token should report no expiry")
	}
}

func TestLifetime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		ttl   time.Duration
		want  time.Duration
	}{
		{"opaque token keeps ttl", "opaque", 24 * time.Hour, 24 * time.Hour},
		{"short token caps ttl", signedToken(t, now.Add(2*time.Hour)), 24 * time.Hour, 2 * time.Hour},
		{"long token keeps ttl", signedToken(t, now.Add(48*time.Hour)), 24 * time.Hour, 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lifetime(tt.token, tt.ttl, now)
			// NumericDate truncates to whole seconds.
			if diff := tt.want - got; diff < 0 || diff > time.Second {
				t.Errorf("Lifetime = %v, want ~%v", got, tt.want)
			}
		})
	}

	expired := signedToken(t, now.Add(-time.Minute))
	if got := Lifetime(expired, time.Hour, now); got > 0 {
		t.Errorf("expired token lifetime = %v, want <= 0", got)
	}
}

func TestNewStoreDefaultTTL(t *testing.T) {
	s := NewStore(nil, 0, false)
	if s.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, DefaultTTL)
	}
}

func TestSessionCreateAndGet(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, time.Hour, false)

	w := httptest.NewRecorder()
	ctx := context.Background()

	data := &Data{
		UserID: "42",
		Email:  "admin@learn.local",
		Name:   "Admin",
		Role:   "admin",
		Token:  "opaque-token",
	}

	sessionID, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sessionID == "" {
		t.Error("expected non-empty session ID")
	}

	cookie := sessionCookie(t, w)
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if cookie.Secure {
		t.Error("expected Secure=false for non-secure store")
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, want 3600", cookie.MaxAge)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)

	retrieved, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected session data, got nil")
	}
	if retrieved.Email != "admin@learn.local" || retrieved.Token != "opaque-token" {
		t.Errorf("retrieved = %+v", retrieved)
	}
	if retrieved.ExpiresAt.IsZero() {
		t.Error("expected ExpiresAt to be set")
	}
}

func TestSessionCreate_TTLBoundByToken(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, 24*time.Hour, false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	if _, err := store.Create(ctx, w, &Data{Email: "a@b.c", Token: signedToken(t, time.Now().Add(10*time.Minute))}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cookie := sessionCookie(t, w)
	if cookie.MaxAge > 600 || cookie.MaxAge < 590 {
		t.Errorf("MaxAge = %d, want about 600", cookie.MaxAge)
	}
	ttl, err := client.TTL(ctx, keyPrefix+cookie.Value).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl > 10*time.Minute {
		t.Errorf("Valkey TTL = %v, should not exceed token lifetime", ttl)
	}
}

func TestSessionCreate_ExpiredToken(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, time.Hour, false)

	_, err := store.Create(context.Background(), httptest.NewRecorder(), &Data{
		Token: signedToken(t, time.Now().Add(-time.Minute)),
	})
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestSessionGetNoCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, time.Hour, false)

	req := httptest.NewRequest("GET", "/", nil)
	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (no cookie): %v", err)
	}
	if data != nil {
		t.Error("expected nil for request without session cookie")
	}
}

func TestSessionGetExpired(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, time.Hour, false)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "nonexistent-session-id"})

	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (expired): %v", err)
	}
	if data != nil {
		t.Error("expected nil for expired/nonexistent session")
	}
}

func TestSessionDestroy(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, time.Hour, false)

	w := httptest.NewRecorder()
	ctx := context.Background()

	if _, err := store.Create(ctx, w, &Data{Email: "destroy@learn.local", Token: "t"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	cookie := sessionCookie(t, w)

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)

	if err := store.Destroy(ctx, w2, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	for _, c := range w2.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge != -1 {
			t.Error("expected MaxAge=-1 on destroyed cookie")
		}
	}

	retrieved, _ := store.Get(ctx, req)
	if retrieved != nil {
		t.Error("expected nil after destroy")
	}
}

func TestSessionDestroyNoCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, time.Hour, false)

	err := store.Destroy(context.Background(), httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Errorf("Destroy (no cookie): %v", err)
	}
}

func TestSessionSecureCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, time.Hour, true)

	w := httptest.NewRecorder()
	if _, err := store.Create(context.Background(), w, &Data{Email: "secure@learn.local", Token: "t"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !sessionCookie(t, w).Secure {
		t.Error("expected Secure=true for secure store")
	}
}
