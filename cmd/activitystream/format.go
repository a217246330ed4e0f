package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jpalmerr/activitystream"
	"github.com/mattn/go-isatty"
)

const (
	formatJSON = "json"
	formatText = "text"

	// maxTextContent truncates comment bodies in text output.
	maxTextContent = 120
)

// resolveFormat returns the output format to use. An empty flag picks text
// when stdout is a terminal and JSON lines otherwise.
func resolveFormat(flag string, stdout *os.File) (string, error) {
	switch flag {
	case formatJSON, formatText:
		return flag, nil
	case "":
		fd := stdout.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return formatText, nil
		}
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s or %s)", flag, formatJSON, formatText)
	}
}

// printer writes the events of each batch to w. Failed batches are not
// printed; the poll loop already logs them.
type printer struct {
	w      io.Writer
	format string
	now    func() time.Time
	enc    *json.Encoder
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{
		w:      w,
		format: format,
		now:    time.Now,
		enc:    json.NewEncoder(w),
	}
}

// Print is an [activitystream.Handler].
func (p *printer) Print(batch activitystream.Batch) {
	if batch.Err != nil {
		return
	}
	for _, ev := range batch.Events {
		if p.format == formatJSON {
			_ = p.enc.Encode(ev)
			continue
		}
		fmt.Fprintln(p.w, p.text(ev))
	}
}

// text renders one event as a single line:
//
//	3 minutes ago  Jane Doe on "Article title": comment body (event 1448046383446497)
func (p *printer) text(ev activitystream.CommentEvent) string {
	var b strings.Builder

	when := "unknown time"
	if ev.Comment.CreatedAt > 0 {
		when = humanize.RelTime(time.Unix(ev.Comment.CreatedAt, 0), p.now(), "ago", "from now")
	}
	b.WriteString(when)
	b.WriteString("  ")

	author := "unknown author"
	if ev.Comment.Author != nil && ev.Comment.Author.DisplayName != "" {
		author = ev.Comment.Author.DisplayName
	}
	b.WriteString(author)

	if ev.Article != nil && ev.Article.Title != "" {
		fmt.Fprintf(&b, " on %q", ev.Article.Title)
	}
	b.WriteString(": ")
	b.WriteString(truncate(oneLine(ev.Comment.Content), maxTextContent))
	fmt.Fprintf(&b, " (event %s)", ev.EventID)

	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
