package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/activitystream"
)

func TestResolveFormat_Explicit(t *testing.T) {
	for _, flag := range []string{formatJSON, formatText} {
		got, err := resolveFormat(flag, nil)
		if err != nil {
			t.Fatalf("resolveFormat(%q) error = %v", flag, err)
		}
		if got != flag {
			t.Errorf("resolveFormat(%q) = %q", flag, got)
		}
	}

	if _, err := resolveFormat("yaml", nil); err == nil {
		t.Error("resolveFormat(yaml) expected error, got nil")
	}
}

func TestPrinter_Text(t *testing.T) {
	now := time.Unix(1448046383, 0)

	var buf bytes.Buffer
	p := newPrinter(&buf, formatText)
	p.now = func() time.Time { return now }

	p.Print(activitystream.Batch{Events: []activitystream.CommentEvent{
		{
			EventID: "105",
			Article: &activitystream.Article{Title: "Launch"},
			Comment: activitystream.Comment{
				Author:    &activitystream.Author{DisplayName: "Jane"},
				Content:   "<p>hello\n  world</p>",
				CreatedAt: now.Add(-3 * time.Minute).Unix(),
			},
		},
		{EventID: "106"},
	}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2\n%s", len(lines), buf.String())
	}

	want := `3 minutes ago  Jane on "Launch": <p>hello world</p> (event 105)`
	if lines[0] != want {
		t.Errorf("line[0] = %q\nwant     %q", lines[0], want)
	}
	want = "unknown time  unknown author:  (event 106)"
	if lines[1] != want {
		t.Errorf("line[1] = %q\nwant     %q", lines[1], want)
	}
}

func TestPrinter_SkipsFailedBatch(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, formatJSON)

	p.Print(activitystream.Batch{Err: errors.New("boom")})

	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 10); got != "héllo" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("héllo", 2); got != "hé…" {
		t.Errorf("truncate long = %q", got)
	}
}
