package rentservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClient_CanAcceptPayment(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/rent-service/canPay/10" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(true)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	ok, err := client.CanAcceptPayment(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected true")
	}
}

func TestHTTPClient_CanAcceptPayment_False(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(false)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	ok, err := client.CanAcceptPayment(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("a business false must not be an error")
	}
}

func TestHTTPClient_IsActive_QueryParam(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("rentId"); got != "42" {
			t.Errorf("expected rentId=42, got %q", got)
		}
		json.NewEncoder(w).Encode(true)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	active, err := client.IsActive(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !active {
		t.Error("expected true")
	}
}

func TestHTTPClient_MarkCompleted(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/rent-service/status/10" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var status string
		if err := json.Unmarshal(body, &status); err != nil || status != RentStatusCompleted {
			t.Errorf("expected body %q, got %s", RentStatusCompleted, body)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	if err := client.MarkCompleted(context.Background(), 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPClient_NonOKStatus_Unavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	if _, err := client.CanAcceptPayment(context.Background(), 10); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if err := client.MarkCompleted(context.Background(), 10); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestHTTPClient_MalformedBody_Unavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	if _, err := client.IsActive(context.Background(), 10); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestHTTPClient_Timeout_Unavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(true)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 20*time.Millisecond)
	if _, err := client.CanAcceptPayment(context.Background(), 10); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestFallback_AlwaysUnavailable(t *testing.T) {
	t.Parallel()

	fb := NewFallback()
	ctx := context.Background()

	if _, err := fb.CanAcceptPayment(ctx, 1); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if _, err := fb.IsActive(ctx, 1); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if err := fb.MarkCompleted(ctx, 1); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
