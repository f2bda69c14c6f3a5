package query

import "time"

// Lifecycle topics published on the client's event bus. Handlers take a
// single FetchEvent, InvalidateEvent or MutationEvent argument.
const (
	TopicFetchStarted   = "query:fetch:started"
	TopicFetchSucceeded = "query:fetch:succeeded"
	TopicFetchFailed    = "query:fetch:failed"
	TopicInvalidated    = "query:invalidated"
	TopicMutation       = "query:mutation"
)

// FetchEvent describes one upstream fetch run on behalf of a key.
type FetchEvent struct {
	Key      string
	Resource string
	Duration time.Duration
	Err      error
}

// InvalidateEvent reports the entries marked stale for one prefix.
type InvalidateEvent struct {
	Prefix string
	Keys   []string
}

// MutationEvent reports a finished mutation.
type MutationEvent struct {
	Name        string
	Duration    time.Duration
	Err         error
	Invalidated []string
}
