package poller

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"net/url"
	"strings"
	"testing"
	"time"
)

// TestClient_ConnectionReuse verifies that the HTTP client reuses connections
// when making sequential requests to the same host.
func TestClient_ConnectionReuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(0)

	var reusedCount int
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reusedCount++
			}
		},
	}

	const numRequests = 5

	for i := 0; i < numRequests; i++ {
		ctx := httptrace.WithClientTrace(context.Background(), trace)
		resp := client.Send(ctx, Request{URL: server.URL}, 5*time.Second)
		if resp.Error != nil {
			t.Fatalf("request %d failed: %v", i, resp.Error)
		}
	}

	expectedMinReuse := numRequests - 2 // allow some tolerance
	if reusedCount < expectedMinReuse {
		t.Errorf("expected at least %d reused connections, got %d out of %d requests",
			expectedMinReuse, reusedCount, numRequests)
	}
}

// TestClient_SendsQueryAndHeaders verifies the request carries the composed
// query and headers.
func TestClient_SendsQueryAndHeaders(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	resp := NewClient(0).Send(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     server.URL + "/api/activity/?existing=1",
		Query:   url.Values{"resource": {"urn:x"}, "since": {"42"}},
		Headers: map[string]string{"Authorization": "Bearer abc"},
	}, time.Second)

	if resp.Error != nil {
		t.Fatalf("Send() error = %v", resp.Error)
	}
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}
	if string(resp.Body) != "short and stout" {
		t.Errorf("Body = %q", resp.Body)
	}

	q := got.URL.Query()
	if q.Get("resource") != "urn:x" || q.Get("since") != "42" || q.Get("existing") != "1" {
		t.Errorf("query = %v", q)
	}
	if got.Header.Get("Authorization") != "Bearer abc" {
		t.Errorf("Authorization = %q", got.Header.Get("Authorization"))
	}
	if got.URL.Path != "/api/activity/" {
		t.Errorf("path = %q", got.URL.Path)
	}
}

// TestClient_Timeout verifies the per-request timeout surfaces as an error.
func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	resp := NewClient(0).Send(context.Background(), Request{URL: server.URL}, 50*time.Millisecond)
	if resp.Error == nil {
		t.Fatal("expected timeout error")
	}
	if resp.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", resp.StatusCode)
	}
}

// TestClient_InvalidURL verifies that a malformed URL is reported, not panicked on.
func TestClient_InvalidURL(t *testing.T) {
	resp := NewClient(0).Send(context.Background(), Request{URL: "://bad"}, time.Second)
	if resp.Error == nil || !strings.Contains(resp.Error.Error(), "invalid request url") {
		t.Errorf("Error = %v, want invalid request url", resp.Error)
	}
}

// TestClient_Close verifies that Close() is safe to call and idempotent.
func TestClient_Close(t *testing.T) {
	client := NewClient(0)

	client.Close()
	client.Close()

	var nilClient *Client
	nilClient.Close()
}

// TestClient_BodySizeLimit verifies that a body over the limit is reported
// as an error instead of being silently truncated, and that a body exactly
// at the limit is returned whole.
func TestClient_BodySizeLimit(t *testing.T) {
	const limit = 1024

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"under limit", limit - 1, false},
		{"at limit", limit, false},
		{"over limit", limit + 1, true},
		{"far over limit", 4 * limit, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte("x"), tt.size)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(payload)
			}))
			defer server.Close()

			resp := NewClient(limit).Send(context.Background(), Request{URL: server.URL}, 5*time.Second)

			if tt.wantErr {
				if !errors.Is(resp.Error, ErrResponseTooLarge) {
					t.Fatalf("Error = %v, want ErrResponseTooLarge", resp.Error)
				}
				if resp.Body != nil {
					t.Errorf("Body length = %d, want no body", len(resp.Body))
				}
				if resp.StatusCode != http.StatusOK {
					t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
				}
				return
			}
			if resp.Error != nil {
				t.Fatalf("Error = %v, want nil", resp.Error)
			}
			if len(resp.Body) != tt.size {
				t.Errorf("Body length = %d, want %d", len(resp.Body), tt.size)
			}
		})
	}
}

// TestClient_DefaultBodySizeLimit verifies a page larger than 1MB is
// delivered whole with the default limit.
func TestClient_DefaultBodySizeLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 3<<20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	resp := NewClient(0).Send(context.Background(), Request{URL: server.URL}, 5*time.Second)
	if resp.Error != nil {
		t.Fatalf("Error = %v, want nil", resp.Error)
	}
	if len(resp.Body) != len(payload) {
		t.Errorf("Body length = %d, want %d", len(resp.Body), len(payload))
	}
}
