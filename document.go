package livy

import "github.com/tidwall/gjson"

// Session and statement states the lifecycle state machines act on. Any
// other value, including an absent state field, keeps the poll loop going.
const (
	StateIdle      = "idle"
	StateAvailable = "available"
	StateUnknown   = "unknown"
)

var (
	sessionFailedStates     = []string{"error", "dead", "killed"}
	statementTerminalStates = []string{StateAvailable, "error", "cancelled"}
)

// Document is a response payload held verbatim and queried as opaque JSON.
// The zero value is the empty document, which is also what an empty 2xx
// response body yields.
type Document struct {
	raw string
}

func newDocument(body string) Document {
	return Document{raw: body}
}

// Raw returns the payload exactly as received.
func (d Document) Raw() string { return d.raw }

// Empty reports whether the document holds no payload at all.
func (d Document) Empty() bool { return d.raw == "" }

// Get queries the document with a gjson path, e.g. "output.data".
func (d Document) Get(path string) gjson.Result {
	return gjson.Get(d.raw, path)
}

// State returns the document's state field, or [StateUnknown] when absent.
func (d Document) State() string {
	if state := d.Get("state"); state.Exists() {
		return state.String()
	}

	return StateUnknown
}
