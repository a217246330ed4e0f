// Standalone mock activity feed for trying the SDK example and the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockfeed
//
// Then in another terminal:
//
//	go run ./example
//	go run ./cmd/activitystream stream -c example/stream.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

const mockPageSize = 5

// mockComment is one state record in the mock feed.
type mockComment struct {
	event     int64
	author    string
	body      string
	createdAt int64
}

// mockFeed serves a paginated activity stream that grows over time.
type mockFeed struct {
	mu       sync.Mutex
	comments []mockComment
	authors  []string
}

func main() {
	const addr = ":9999"
	fmt.Println("Mock activity feed starting on " + addr)
	fmt.Println("A new comment arrives every 2-5 seconds, 5 per page")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	feed := &mockFeed{authors: []string{"ada", "grace", "linus"}}
	for i := 0; i < 12; i++ {
		feed.add()
	}
	go func() {
		for {
			time.Sleep(time.Duration(2+rand.Intn(4)) * time.Second)
			feed.add()
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/", feed)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func (f *mockFeed) add() {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	n := len(f.comments) + 1
	event := now.UnixMicro()
	if n > 1 && event <= f.comments[n-2].event {
		event = f.comments[n-2].event + 1
	}
	slog.Info("comment added", "event", event)
	f.comments = append(f.comments, mockComment{
		event:     event,
		author:    f.authors[rand.Intn(len(f.authors))],
		body:      fmt.Sprintf("<p>comment number %d</p>", n),
		createdAt: now.Unix(),
	})
}

func (f *mockFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	since, err := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
	if err != nil {
		http.Error(w, "bad since", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	var page []mockComment
	for _, c := range f.comments {
		if c.event > since && len(page) < mockPageSize {
			page = append(page, c)
		}
	}
	f.mu.Unlock()

	states := make([]map[string]any, 0, len(page))
	authors := make(map[string]any)
	next := strconv.FormatInt(since, 10)
	for _, c := range page {
		states = append(states, map[string]any{
			"type":         0,
			"vis":          1,
			"event":        c.event,
			"collectionId": "demo",
			"content": map[string]any{
				"id":        fmt.Sprintf("m%d", c.event),
				"authorId":  c.author + "@demo",
				"bodyHtml":  c.body,
				"createdAt": c.createdAt,
			},
		})
		authors[c.author+"@demo"] = map[string]any{
			"id":          c.author + "@demo",
			"displayName": c.author,
		}
		next = strconv.FormatInt(c.event, 10)
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{
		"data": map[string]any{
			"states":  states,
			"authors": authors,
			"collections": map[string]any{
				"demo": map[string]any{
					"url":               "https://example.com/demo",
					"articleIdentifier": "demo",
					"site":              "1",
					"title":             "Demo article",
				},
			},
		},
		"meta": map[string]any{"cursor": map[string]any{"next": next}},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
