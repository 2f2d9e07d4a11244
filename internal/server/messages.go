package server

import "encoding/json"

// Client message types.
const (
	MsgSet     = "set"
	MsgInsert  = "insert"
	MsgRemove  = "remove"
	MsgGet     = "get"
	MsgOptions = "options"
	MsgFlush   = "flush"
	MsgPing    = "ping"
)

// Server message types.
const (
	MsgSession  = "session"
	MsgSnapshot = "snapshot"
	MsgAck      = "ack"
	MsgValue    = "value"
	MsgError    = "error"
	MsgPong     = "pong"
)

// ClientMessage is the envelope of every client-to-server message.
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EditData is the payload of set, insert, remove, get and options messages.
// Index is only read by insert and remove; a negative insert index appends.
type EditData struct {
	Path  string `json:"path"`
	Index *int   `json:"index,omitempty"`
	Value any    `json:"value,omitempty"`
}

// ServerMessage is the envelope of every server-to-client message.
type ServerMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// SessionData announces a new editing session.
type SessionData struct {
	SessionID  string   `json:"session_id"`
	ObjectType string   `json:"object_type"`
	Fields     any      `json:"fields"`
	Warnings   []string `json:"warnings,omitempty"`
}

// AckData confirms an edit. DirectInput is set for reference fields whose
// value is outside the loaded option list.
type AckData struct {
	Path        string `json:"path"`
	DirectInput bool   `json:"direct_input,omitempty"`
	Pending     bool   `json:"pending"`
}

// ValueData answers get and options messages.
type ValueData struct {
	Path        string `json:"path"`
	Value       any    `json:"value,omitempty"`
	Options     any    `json:"options,omitempty"`
	DirectInput bool   `json:"direct_input,omitempty"`
}

// SnapshotData carries a debounced record snapshot.
type SnapshotData struct {
	Sequence int            `json:"sequence"`
	Record   map[string]any `json:"record"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
