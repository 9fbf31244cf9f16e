package alby_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"podboost/internal/services"
	"podboost/internal/services/alby"
)

func TestBalanceSendsBearerToken(t *testing.T) {
	var auth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance":42000,"unit":"sat","currency":"BTC"}`))
	}))
	defer server.Close()

	client := alby.NewClient(server.URL, "token-123", 5*time.Second)
	balance, err := client.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance.Balance != 42000 || balance.Unit != "sat" {
		t.Fatalf("unexpected balance: %+v", balance)
	}
	if got := auth.Load(); got != "Bearer token-123" {
		t.Fatalf("Authorization = %v, want Bearer token-123", got)
	}
}

func TestBalanceKeepsExplicitScheme(t *testing.T) {
	var auth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance":1,"unit":"sat"}`))
	}))
	defer server.Close()

	client := alby.NewClient(server.URL, "Basic dXNlcjpwdw==", 5*time.Second)
	if _, err := client.Balance(context.Background()); err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if got := auth.Load(); got != "Basic dXNlcjpwdw==" {
		t.Fatalf("Authorization = %v", got)
	}
}

func TestBalanceClassifiesAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := alby.NewClient(server.URL, "expired", 5*time.Second)
	_, err := client.Balance(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBalanceClassifiesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := alby.NewClient(server.URL, "token", 5*time.Second)
	_, err := client.Balance(context.Background())
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
