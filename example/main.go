// Example SDK usage against the mock feed.
//
// Usage:
//
//	go run ./example/cmd/mockfeed
//	go run ./example
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/activitystream"
)

func main() {
	client, err := activitystream.New("demo.fyre.co", "demo-secret",
		activitystream.WithEndpoint("http://localhost:9999/%s/activity/"),
		activitystream.WithInterval(3*time.Second),
	)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  Activity stream demo")
	fmt.Printf("  Polling %s as %s\n", client.URL(), client.URN())
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = client.Start(ctx, "0", func(batch activitystream.Batch) {
		if batch.Err != nil {
			fmt.Printf("  poll from %s failed: %v\n", batch.Since, batch.Err)
			return
		}
		for _, ev := range batch.Events {
			author := "?"
			if ev.Comment.Author != nil {
				author = ev.Comment.Author.DisplayName
			}
			fmt.Printf("  [%s] %s: %s\n", ev.EventID, author, ev.Comment.Content)
		}
	})
	if err != nil {
		slog.Error("activitystream error", "error", err)
		os.Exit(1)
	}
}
