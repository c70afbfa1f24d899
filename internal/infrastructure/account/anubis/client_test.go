package anubis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/usecase"
)

func TestBuildURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		base string
		path string
		want string
	}{
		{"joins with slash", "https://accounts.internal", "introspect", "https://accounts.internal/introspect"},
		{"strips trailing slash", "https://accounts.internal/", "/introspect", "https://accounts.internal/introspect"},
		{"empty path keeps base", "https://accounts.internal", "", "https://accounts.internal"},
		{"absolute path wins", "https://accounts.internal", "https://other.internal/check", "https://other.internal/check"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := buildURL(tc.base, tc.path); got != tc.want {
				t.Fatalf("buildURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
			}
		})
	}
}

func TestClient_VerifyAccessToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Content-Type") {
		case "application/json":
		default:
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"user_id":"u-42","name":" Alice "}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL, "/introspect", nil)
	principal, err := client.VerifyAccessToken(context.Background(), "token-42")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.UserID != "u-42" || principal.Name != "Alice" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestClient_VerifyAccessToken_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"denied", http.StatusUnauthorized, ""},
		{"forbidden", http.StatusForbidden, ""},
		{"inactive token", http.StatusOK, `{"active":false}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			client := NewClient(server.Client(), server.URL, "/introspect", nil)
			_, err := client.VerifyAccessToken(context.Background(), "token")
			if !errors.Is(err, usecase.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestClient_VerifyAccessToken_EmptyToken(t *testing.T) {
	t.Parallel()

	client := NewClient(nil, "https://accounts.internal", "/introspect", nil)
	_, err := client.VerifyAccessToken(context.Background(), "   ")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCachingVerifier_ReusesIntrospection(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"user_id":"u-7","name":"Bob"}`))
	}))
	t.Cleanup(server.Close)

	verifier := NewCachingVerifier(NewClient(server.Client(), server.URL, "/introspect", nil), time.Minute, 16)
	for i := 0; i < 3; i++ {
		principal, err := verifier.VerifyAccessToken(context.Background(), "token-7")
		if err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
		if principal.UserID != "u-7" {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one upstream introspection, got %d", got)
	}
}
