// Package poller drives the activity stream poll loop.
//
// The main components are:
//
//   - [Client]: HTTP [Transport] with per-request timeout and size limit
//   - [RequestBuilder]: composes the URL, query and Authorization header
//   - [Loop]: the cursor/retry state machine feeding a [Handler]
//
// Users of the activitystream library should not need to interact with
// this package directly. Configuration is done through the root package.
package poller
