package query

import "time"

// Status is the lifecycle state of a cache entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// Entry is the observable state of one cache key. Data holds the last
// successful value and survives later failures and invalidation.
type Entry struct {
	Key       string
	Status    Status
	Data      any
	Err       error
	UpdatedAt time.Time
	Stale     bool

	// gen increments on every invalidation so a fetch that started before it
	// cannot clear the stale flag.
	gen uint64
}

// HasData reports whether the entry ever completed successfully.
func (e Entry) HasData() bool {
	return !e.UpdatedAt.IsZero()
}

type eventKind int

const (
	fetchStarted eventKind = iota
	fetchSucceeded
	fetchFailed
	invalidated
)

func (k eventKind) String() string {
	switch k {
	case fetchStarted:
		return "fetch_started"
	case fetchSucceeded:
		return "fetch_succeeded"
	case fetchFailed:
		return "fetch_failed"
	case invalidated:
		return "invalidated"
	}
	return "unknown"
}

type event struct {
	kind eventKind
	data any
	err  error
	at   time.Time
	// gen is the entry generation observed when the fetch started.
	gen uint64
}

// reduce is the only place entry state changes.
func reduce(e Entry, ev event) Entry {
	if e.Status == "" {
		e.Status = StatusIdle
	}

	switch ev.kind {
	case fetchStarted:
		e.Status = StatusLoading
	case fetchSucceeded:
		e.Status = StatusSuccess
		e.Data = ev.data
		e.Err = nil
		e.UpdatedAt = ev.at
		e.Stale = ev.gen != e.gen
	case fetchFailed:
		e.Status = StatusError
		e.Err = ev.err
	case invalidated:
		e.Stale = true
		e.gen++
	}

	return e
}
