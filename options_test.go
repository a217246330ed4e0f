package activitystream

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	c, err := New("client.fyre.co", "secret")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.URN() != "urn:livefyre:client.fyre.co" {
		t.Errorf("URN() = %q", c.URN())
	}
	if c.URL() != "https://client.activity.fyre.co/api/v3.1/activity/" {
		t.Errorf("URL() = %q", c.URL())
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		network string
		secret  string
		wantErr string
	}{
		{"no network", "", "secret", "no network provided"},
		{"no secret", "client.fyre.co", "", "no network secret provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.network, tt.secret)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("New() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New("client.fyre.co", "secret")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.Type() != 0 {
		t.Errorf("Type() = %v, want 0", c.Type())
	}
	if c.Interval() != 10*time.Second {
		t.Errorf("Interval() = %v, want %v", c.Interval(), 10*time.Second)
	}
	if c.timeout != 30*time.Second {
		t.Errorf("timeout = %v, want %v", c.timeout, 30*time.Second)
	}
	if c.ownTransport == nil {
		t.Error("expected client to own its default transport")
	}
}

func TestWithType(t *testing.T) {
	c, err := New("client.fyre.co", "secret", WithType(3))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Type() != 3 {
		t.Errorf("Type() = %v, want 3", c.Type())
	}
}

func TestWithInterval(t *testing.T) {
	c, err := New("client.fyre.co", "secret", WithInterval(30*time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Interval() != 30*time.Second {
		t.Errorf("Interval() = %v, want %v", c.Interval(), 30*time.Second)
	}
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero interval", WithInterval(0)},
		{"negative interval", WithInterval(-time.Second)},
		{"zero timeout", WithTimeout(0)},
		{"empty endpoint", WithEndpoint("")},
		{"endpoint without placeholder", WithEndpoint("https://example.com/activity/")},
		{"empty scope", WithScope("")},
		{"nil logger", WithLogger(nil)},
		{"nil transport", WithTransport(nil)},
		{"nil signer", WithSigner(nil)},
		{"nil directory", WithDirectory(nil)},
		{"zero max body size", WithMaxBodySize(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("client.fyre.co", "secret", tt.opt); err == nil {
				t.Error("New() expected error, got nil")
			}
		})
	}
}

func TestWithEndpoint(t *testing.T) {
	c, err := New("client.fyre.co", "secret", WithEndpoint("http://localhost:9999/%s/activity/"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.URL() != "http://localhost:9999/client/activity/" {
		t.Errorf("URL() = %q", c.URL())
	}
}

func TestWithDirectory(t *testing.T) {
	dir := DirectoryFunc(func(network, secret string) (Identity, error) {
		return Identity{URN: "urn:custom:" + network, Name: "custom"}, nil
	})

	c, err := New("anything", "secret", WithDirectory(dir))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.URN() != "urn:custom:anything" {
		t.Errorf("URN() = %q", c.URN())
	}
	if !strings.Contains(c.URL(), "//custom.") {
		t.Errorf("URL() = %q, want custom network name", c.URL())
	}
}

func TestWithDirectory_Error(t *testing.T) {
	dir := DirectoryFunc(func(network, secret string) (Identity, error) {
		return Identity{}, errors.New("unknown network")
	})

	_, err := New("nope", "secret", WithDirectory(dir))
	if err == nil || !strings.Contains(err.Error(), "unknown network") {
		t.Errorf("New() error = %v, want resolution error", err)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c, err := New("client.fyre.co", "secret", WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.logger != logger {
		t.Error("logger was not set")
	}
}

func TestWithTransport(t *testing.T) {
	tr := &fakeTransport{}

	c, err := New("client.fyre.co", "secret", WithTransport(tr))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.transport != tr {
		t.Error("transport was not set")
	}
	if c.ownTransport != nil {
		t.Error("client must not own an injected transport")
	}
}
