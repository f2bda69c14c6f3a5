//go:build production

package mocktransport

import "net/http"

// Available reports whether this build carries the mock upstream.
const Available = false

// Transport returns nil; production builds never mock the upstream.
func Transport() http.RoundTripper {
	return nil
}
