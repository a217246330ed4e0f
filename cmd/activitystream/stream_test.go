package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jpalmerr/activitystream"
)

const feedPage = `{
	"data": {
		"states": [
			{"type": 0, "event": 1448046383446497, "collectionId": "c1", "content": {"id": "m1", "authorId": "u1", "bodyHtml": "<p>first</p>", "createdAt": 1448046383}},
			{"type": 3, "event": 1448046383446498, "collectionId": "c1", "content": {"id": "m2"}}
		],
		"authors": {"u1": {"id": "u1", "displayName": "Jane"}},
		"collections": {"c1": {"url": "http://x", "articleIdentifier": "a1", "site": "s1", "title": "T"}}
	},
	"meta": {"cursor": {"next": "1448046383446498"}}
}`

func TestRunStream_Once(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		since []string
		auth  []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		since = append(since, r.URL.Query().Get("since"))
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte(feedPage))
	}))
	defer srv.Close()

	configPath := writeConfig(t, `
network: client.fyre.co
secret: s3cret
endpoint: `+srv.URL+`/%s/activity/
`)

	output, err := executeCmd(t, "stream", "-c", configPath, "--once", "--since", "1448046383446490", "--format", "json")
	if err != nil {
		t.Fatalf("stream command error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 1 {
		t.Fatalf("requests = %d, want 1", len(paths))
	}
	if paths[0] != "/client/activity/" {
		t.Errorf("path = %q, want /client/activity/", paths[0])
	}
	if since[0] != "1448046383446490" {
		t.Errorf("since = %q, want flag value", since[0])
	}
	if !strings.HasPrefix(auth[0], "Bearer ") {
		t.Errorf("Authorization = %q, want bearer token", auth[0])
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 1 {
		t.Fatalf("output lines = %d, want 1 (type filter drops the second state)\n%s", len(lines), output)
	}

	var ev activitystream.CommentEvent
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if ev.EventID != "1448046383446497" {
		t.Errorf("EventID = %q", ev.EventID)
	}
	if ev.Comment.Author == nil || ev.Comment.Author.DisplayName != "Jane" {
		t.Errorf("Author = %+v, want Jane", ev.Comment.Author)
	}
}

func TestRunStream_OnceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	configPath := writeConfig(t, `
network: client.fyre.co
secret: s3cret
endpoint: `+srv.URL+`/%s/
`)

	_, err := executeCmd(t, "stream", "-c", configPath, "--once", "--format", "json")
	if err == nil {
		t.Fatal("stream command expected error, got nil")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error = %v, want status code", err)
	}
}

func TestRunStream_UnknownFormat(t *testing.T) {
	configPath := writeConfig(t, "network: n\nsecret: s\n")

	_, err := executeCmd(t, "stream", "-c", configPath, "--once", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("error = %v, want unknown format", err)
	}
}
