// Package activitystream follows the activity stream of a content network
// and delivers new comments to a handler in batches.
//
// Every request carries a freshly checked, short-lived HS256 token issued
// for the network. The client walks the stream's cursor pagination,
// keeps only events of the configured type that lie beyond the current
// position, resolves each event's author and article from the page's
// lookup tables and hands the result to the caller.
//
// # Quick Start
//
//	client, _ := activitystream.New("client.fyre.co", secret)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	client.Start(ctx, "0", func(b activitystream.Batch) {
//	    if b.Err != nil {
//	        slog.Warn("poll failed", "error", b.Err)
//	        return
//	    }
//	    for _, ev := range b.Events {
//	        fmt.Println(ev.Comment.CommentID, ev.Comment.Content)
//	    }
//	}) // blocks until ctx is cancelled
//
// # Delivery
//
// The position only moves forward when a page carries a next cursor. Any
// error, an exhausted page or an unreadable payload leaves the position
// where it was and the client polls again after the configured interval,
// so events are delivered at least once. Pages are requested back to back
// while the server has more of them.
//
// [Client.Once] makes a single request and returns its batch, which is
// useful for checking credentials or sampling the stream.
//
// # Configuration
//
//	client, err := activitystream.New("client.fyre.co", secret,
//	    activitystream.WithType(0),
//	    activitystream.WithInterval(30 * time.Second),
//	    activitystream.WithTimeout(10 * time.Second),
//	    activitystream.WithLogger(logger),
//	)
//
// The transport, token signer and network directory can be replaced with
// [WithTransport], [WithSigner] and [WithDirectory].
//
// # Architecture
//
//   - activity: the delivered data model and error kinds
//   - config: YAML configuration for the command line tool
//   - internal/token: credential issuing
//   - internal/network: network identity resolution
//   - internal/normalize: page decoding, filtering and projection
//   - internal/poller: HTTP transport, request building and the poll loop
package activitystream
