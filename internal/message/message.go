// Package message defines the clipstash IPC protocol.
//
// All messages are newline-delimited JSON: <json>\n. CLI sub-commands send
// one request and read one response over the daemon's local socket. Image
// payloads never cross the socket; history responses carry previews and
// sizes only.
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"go.klb.dev/clipstash/internal/item"
)

// Type identifies the kind of message.
type Type string

const (
	TypeHistory Type = "HISTORY" // request: Query → response: Records
	TypeRecall  Type = "RECALL"  // request: ID, Paste
	TypeRemove  Type = "REMOVE"  // request: ID
	TypeClear   Type = "CLEAR"
	TypeExtract Type = "EXTRACT" // request: ID, Field → response: Text
	TypeStatus  Type = "STATUS"  // response: Items, Backend
	TypeOK      Type = "OK"
	TypeError   Type = "ERROR"
)

// Extraction field names for TypeExtract.
const (
	FieldText    = "text"
	FieldBarcode = "barcode"
)

// Record is the wire form of one history item.
type Record struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Kind      item.Kind `json:"kind"`
	Preview   string    `json:"preview,omitempty"`
	SizeBytes int       `json:"size_bytes,omitempty"`
}

// RecordOf summarizes an item for the wire: body text for text/url items,
// byte size for images.
func RecordOf(it item.Item) Record {
	rec := Record{
		ID:   it.ID.String(),
		Time: it.Time,
		Kind: it.Kind,
	}
	if it.Kind == item.KindImage {
		rec.SizeBytes = len(it.Image)
	} else {
		rec.Preview = it.Body()
	}
	return rec
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// Requests
	Query string `json:"query,omitempty"` // HISTORY
	ID    string `json:"id,omitempty"`    // RECALL, REMOVE, EXTRACT
	Paste bool   `json:"paste,omitempty"` // RECALL
	Field string `json:"field,omitempty"` // EXTRACT: text|barcode

	// Responses
	Records []Record `json:"records,omitempty"` // HISTORY
	Text    string   `json:"text,omitempty"`    // EXTRACT
	Items   int      `json:"items,omitempty"`   // STATUS
	Backend string   `json:"backend,omitempty"` // STATUS

	Error string `json:"error,omitempty"` // ERROR
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Errorf builds an ERROR message.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// OK is the empty success response.
func OK() *Message { return &Message{Type: TypeOK} }
