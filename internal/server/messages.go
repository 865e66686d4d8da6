package server

// Message types exchanged with a tag bridge.
const (
	// bridge -> daemon
	TypeRead        = "read"
	TypeWriteResult = "write_result"

	// daemon -> bridge
	TypeTransition = "transition"
	TypeWrite      = "write"
)

// Message is the JSON envelope for every websocket message.
type Message struct {
	Type string `json:"type"`

	// read
	URI string `json:"uri,omitempty"`

	// write / write_result
	ID      string `json:"id,omitempty"`
	Payload []byte `json:"payload,omitempty"`
	OK      bool   `json:"ok,omitempty"`
	Error   string `json:"error,omitempty"`

	// transition
	Key    string `json:"key,omitempty"`
	Name   string `json:"name,omitempty"`
	Action string `json:"action,omitempty"`
}

// WriteResult is the asynchronous outcome of a tag write.
type WriteResult struct {
	ID  string
	OK  bool
	Err string
}
