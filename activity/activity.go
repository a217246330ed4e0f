// Package activity defines the normalized records delivered by an
// activity stream poll and the errors a poll can report.
//
// The types in this package are shared between the public activitystream
// package and its internal packages. They are plain values with JSON tags
// matching the feed's camelCase naming, so a batch can be written out as
// JSON lines without further mapping.
package activity

// Author is the projection of a raw author record, looked up by id from
// the page-local authors table.
type Author struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Tags        []string `json:"tags"`
	Type        int      `json:"type"`
}

// Article is the projection of a raw collection record, looked up by id
// from the page-local collections table.
type Article struct {
	ArticleID string `json:"articleId"`
	SiteID    string `json:"siteId"`
	URL       string `json:"url"`
	Title     string `json:"title"`
}

// Comment holds the comment portion of a [CommentEvent].
//
// Author is nil when the page's authors table has no entry for the
// comment's author id. CreatedAt and UpdatedAt are unix seconds as
// reported by the feed; zero means the field was absent.
type Comment struct {
	ParentID   string  `json:"parentId,omitempty"`
	Author     *Author `json:"author"`
	Content    string  `json:"content,omitempty"`
	CreatedAt  int64   `json:"createdAt,omitempty"`
	UpdatedAt  int64   `json:"updatedAt,omitempty"`
	CommentID  string  `json:"commentId,omitempty"`
	Visibility int     `json:"visibility"`
}

// CommentEvent is the unit delivered to a batch handler.
//
// Article is nil when the page's collections table has no entry for
// CollectionID. EventID is the feed's event identifier for the state
// record the comment was projected from.
type CommentEvent struct {
	EventID      string   `json:"eventId"`
	CollectionID string   `json:"collectionId"`
	Article      *Article `json:"article"`
	Comment      Comment  `json:"comment"`
}

// Batch is a single delivery to a batch handler.
//
// Exactly one of Err and Events is meaningful: when Err is non-nil the
// poll failed and Events is nil. Since is the cursor the request was made
// with, not the cursor the next request will use.
type Batch struct {
	// Since is the position the poll was made from.
	Since string

	// Events holds the normalized events in page order. May be empty.
	Events []CommentEvent

	// Err is a *TransportError, *ParseError or *SigningError when the
	// poll failed.
	Err error

	// StatusCode is the HTTP status code of the response, or zero if no
	// response was received.
	StatusCode int
}
