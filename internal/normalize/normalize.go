// Package normalize turns raw activity stream pages into [activity.CommentEvent]
// values.
//
// A page carries an ordered list of state records plus page-local lookup
// tables for authors and collections. Normalization filters the states by
// event type and by position, resolves the nested author and collection
// references and preserves page order.
package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/jpalmerr/activitystream/activity"
)

// Result is the outcome of normalizing one page.
type Result struct {
	// Events holds the included records in page order.
	Events []activity.CommentEvent

	// NextCursor is meta.cursor.next, or empty when the page is the last
	// one currently available.
	NextCursor string

	// HasStates reports whether the body carried a data.states field.
	// A body without it holds nothing new and should be retried later.
	HasStates bool
}

// flexString decodes a JSON string, number or null into a string.
// The feed is not consistent about which one it uses for identifiers.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexInt decodes a JSON integer, float, numeric string or null into an
// int64. Fractions are truncated; any other value decodes as zero.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := json.Unmarshal(b, &s); err != nil {
		*n = 0
		return nil
	}
	if i, err := strconv.ParseInt(string(s), 10, 64); err == nil {
		*n = flexInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(f)
	return nil
}

// rawPage keeps state records and lookup tables undecoded. A record is
// decoded field by field only after it passes the filter.
type rawPage struct {
	Data *struct {
		States      *[]json.RawMessage         `json:"states"`
		Authors     map[string]json.RawMessage `json:"authors"`
		Collections map[string]json.RawMessage `json:"collections"`
	} `json:"data"`
	Meta *struct {
		Cursor *struct {
			Next flexString `json:"next"`
		} `json:"cursor"`
	} `json:"meta"`
}

// object holds the members of a JSON object, undecoded.
type object map[string]json.RawMessage

// asObject returns the members of raw, or nil if raw is not an object.
func asObject(raw json.RawMessage) object {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil
	}
	return o
}

// get decodes member key into dst and reports whether it succeeded. A
// missing, null or malformed member reports false and may leave dst
// partially written.
func (o object) get(key string, dst any) bool {
	v, ok := o[key]
	if !ok || bytes.Equal(v, []byte("null")) {
		return false
	}
	return json.Unmarshal(v, dst) == nil
}

func (o object) str(key string) string {
	var s flexString
	o.get(key, &s)
	return string(s)
}

func (o object) integer(key string) int64 {
	var n flexInt
	o.get(key, &n)
	return int64(n)
}

// Normalize decodes body and returns the events of type typeFilter whose
// event id is strictly greater than position.
//
// If body is not valid JSON, a single repair pass rewrites literal \U
// escapes to \u and decodes again. A second failure is returned as
// *activity.ParseError.
func Normalize(body []byte, position string, typeFilter int) (Result, error) {
	page, err := decode(body)
	if err != nil {
		return Result{}, &activity.ParseError{Err: err}
	}

	if page.Data == nil || page.Data.States == nil {
		return Result{}, nil
	}

	res := Result{HasStates: true}
	if page.Meta != nil && page.Meta.Cursor != nil {
		res.NextCursor = string(page.Meta.Cursor.Next)
	}

	for _, raw := range *page.Data.States {
		st := asObject(raw)

		// a record without an integer type never matches, including
		// the default filter of 0
		var typ int
		if !st.get("type", &typ) || typ != typeFilter {
			continue
		}
		event := st.str("event")
		if !after(event, position) {
			continue
		}
		res.Events = append(res.Events, project(event, st, page.Data.Authors, page.Data.Collections))
	}

	return res, nil
}

// decode parses body, falling back to one repair of malformed \U escapes.
func decode(body []byte) (rawPage, error) {
	var page rawPage
	err := json.Unmarshal(body, &page)
	if err == nil {
		return page, nil
	}

	repaired := repairEscapes(body)
	if bytes.Equal(repaired, body) {
		return rawPage{}, err
	}

	page = rawPage{}
	if err := json.Unmarshal(repaired, &page); err != nil {
		return rawPage{}, err
	}
	return page, nil
}

// repairEscapes rewrites \U escapes to \u. A U preceded by an even run of
// backslashes is an escaped backslash followed by a literal U and is left
// alone.
func repairEscapes(body []byte) []byte {
	out := make([]byte, len(body))
	copy(out, body)

	run := 0
	for i, c := range out {
		if c == '\\' {
			run++
			continue
		}
		if c == 'U' && run%2 == 1 {
			out[i] = 'u'
		}
		run = 0
	}
	return out
}

// after reports whether event lies beyond position. A position that is not
// numeric (an opaque pagination token, or empty) imposes no boundary; an
// event id that is not numeric never passes a numeric one.
func after(event, position string) bool {
	pos, err := strconv.ParseInt(position, 10, 64)
	if err != nil {
		return true
	}
	id, err := strconv.ParseInt(event, 10, 64)
	if err != nil {
		return false
	}
	return id > pos
}

// project builds the event for an included record. Malformed fields decode
// as their zero value.
func project(event string, st object, authors, collections map[string]json.RawMessage) activity.CommentEvent {
	collectionID := st.str("collectionId")

	var vis flexInt
	st.get("vis", &vis)

	ev := activity.CommentEvent{
		EventID:      event,
		CollectionID: collectionID,
		Article:      lookupArticle(collectionID, collections),
		Comment: activity.Comment{
			Visibility: int(vis),
		},
	}

	if c := asObject(st["content"]); c != nil {
		var body string
		c.get("bodyHtml", &body)

		ev.Comment.ParentID = c.str("parentId")
		ev.Comment.Author = lookupAuthor(c.str("authorId"), authors)
		ev.Comment.Content = body
		ev.Comment.CreatedAt = c.integer("createdAt")
		ev.Comment.UpdatedAt = c.integer("updatedAt")
		ev.Comment.CommentID = c.str("id")
	}

	return ev
}

func lookupAuthor(id string, authors map[string]json.RawMessage) *activity.Author {
	if id == "" {
		return nil
	}
	raw, ok := authors[id]
	if !ok {
		return nil
	}
	a := asObject(raw)
	if a == nil {
		return nil
	}

	author := &activity.Author{ID: a.str("id")}
	a.get("displayName", &author.DisplayName)
	a.get("tags", &author.Tags)
	author.Type = int(a.integer("type"))
	return author
}

func lookupArticle(id string, collections map[string]json.RawMessage) *activity.Article {
	if id == "" {
		return nil
	}
	raw, ok := collections[id]
	if !ok {
		return nil
	}
	c := asObject(raw)
	if c == nil {
		return nil
	}

	article := &activity.Article{
		ArticleID: c.str("articleIdentifier"),
		SiteID:    c.str("site"),
	}
	c.get("url", &article.URL)
	c.get("title", &article.Title)
	return article
}
