package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Responder produces the status and body for one upstream request. A body of
// type []byte or json.RawMessage is written as is; anything else is encoded
// as JSON.
type Responder func(r *http.Request, body []byte) (int, any)

// RecordedRequest is a request seen by Backend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Backend is a fake upstream API that records every request it serves.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]Responder
	requests map[string][]RecordedRequest
}

// NewBackend starts a Backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		routes:   make(map[string]Responder),
		requests: make(map[string][]RecordedRequest),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

func routeKey(method, path string) string {
	return method + " " + path
}

// Handle registers fn for method and path. Paths match exactly, query
// strings are ignored.
func (b *Backend) Handle(method, path string, fn Responder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[routeKey(method, path)] = fn
}

// JSON registers a fixed response.
func (b *Backend) JSON(method, path string, status int, v any) {
	b.Handle(method, path, func(*http.Request, []byte) (int, any) { return status, v })
}

// Calls returns how many requests hit method and path.
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests[routeKey(method, path)])
}

// Requests returns the recorded requests for method and path.
func (b *Backend) Requests(method, path string) []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests[routeKey(method, path)]...)
}

// TotalCalls returns the number of requests served on any route.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, reqs := range b.requests {
		n += len(reqs)
	}
	return n
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := routeKey(r.Method, r.URL.Path)

	b.mu.Lock()
	b.requests[key] = append(b.requests[key], RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	fn, ok := b.routes[key]
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route for " + key})
		return
	}

	status, payload := fn(r, body)
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")

	var data []byte
	switch v := payload.(type) {
	case nil:
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(v)
	}

	w.WriteHeader(status)
	_, _ = w.Write(data)
}
