package activitystream

import (
	"github.com/jpalmerr/activitystream/activity"
	"github.com/jpalmerr/activitystream/internal/network"
	"github.com/jpalmerr/activitystream/internal/poller"
	"github.com/jpalmerr/activitystream/internal/token"
)

// Event model, re-exported from package activity.
type (
	CommentEvent = activity.CommentEvent
	Comment      = activity.Comment
	Author       = activity.Author
	Article      = activity.Article
	Batch        = activity.Batch
)

// Error kinds reported in [Batch.Err].
type (
	TransportError = activity.TransportError
	ParseError     = activity.ParseError
	SigningError   = activity.SigningError
)

// ErrResponseTooLarge is wrapped by the [TransportError] reported for a
// page larger than the limit set with [WithMaxBodySize].
var ErrResponseTooLarge = poller.ErrResponseTooLarge

// Handler receives each [Batch] delivered by [Client.Start].
//
// Handlers are invoked synchronously from the polling goroutine and must
// tolerate batches with no events. Panics within a handler are recovered
// and logged; they do not stop the poll loop.
type Handler = poller.Handler

// Collaborators that can be replaced with [WithTransport], [WithSigner]
// and [WithDirectory].
type (
	// Transport sends a poll request and reports status and body.
	Transport = poller.Transport
	Request   = poller.Request
	Response  = poller.Response

	// Signer signs token claims with the network secret.
	Signer     = token.Signer
	SignerFunc = token.SignerFunc
	Claims     = token.Claims

	// Directory resolves a network name into its canonical identity.
	Directory     = network.Directory
	DirectoryFunc = network.DirectoryFunc
	Identity      = network.Identity
)
