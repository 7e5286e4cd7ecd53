package livy

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoActiveSession is returned by operations that require a session
	// while none is active on the client.
	ErrNoActiveSession = errors.New("livy: no active session")

	// ErrNoSessionLocation is returned when a session creation response
	// carried no location metadata to derive the session path from.
	ErrNoSessionLocation = errors.New("livy: create session response carried no location header")

	// ErrWaitTimeout is returned when the overall timeout budget elapsed
	// before a polling loop observed a terminal state. It is distinct from
	// the remote service reporting a failed state, which is a normal return.
	ErrWaitTimeout = errors.New("livy: timed out waiting for a terminal state")
)

// RemoteError describes a non-2xx response received from the service. It is
// only surfaced after the retry ceiling is exhausted (for retryable statuses)
// or immediately (for all others), and carries the raw body verbatim.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	status := http.StatusText(e.StatusCode)
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("livy: remote returned %d %s: %s", e.StatusCode, status, e.Body)
}

// Temporary reports whether the engine may retry the request that produced
// this error: throttling (429) and server-side failures (5xx).
func (e *RemoteError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		(e.StatusCode >= http.StatusInternalServerError && e.StatusCode < 600)
}

// AsRemoteError unwraps any error and looks for a [*RemoteError]. Errors
// without one in their chain never reached the service or never received a
// response.
func AsRemoteError(err error) (*RemoteError, bool) {
	var remoteErr *RemoteError
	ok := errors.As(err, &remoteErr)
	return remoteErr, ok
}
