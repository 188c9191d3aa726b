package server

import (
	"encoding/json"
	"time"

	"github.com/lox/rpsduel/internal/move"
	"github.com/lox/rpsduel/internal/round"
)

// MessageType identifies a WebSocket message
type MessageType string

const (
	// Client → Server
	MessageTypeSubmitChoice MessageType = "submit_choice"
	MessageTypeResetSession MessageType = "reset_session"

	// Server → Client
	MessageTypeState    MessageType = "state"
	MessageTypeRejected MessageType = "rejected"
	MessageTypeError    MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	msg := &Message{
		Type:      messageType,
		Timestamp: time.Now(),
	}
	if data == nil {
		return msg, nil
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	msg.Data = dataBytes
	return msg, nil
}

// SubmitChoiceData is the payload of submit_choice
type SubmitChoiceData struct {
	Move move.Move `json:"move"`
}

// StateData is sent on connect and after every engine event. Event is empty
// for the initial state.
type StateData struct {
	SessionID string         `json:"sessionId"`
	Event     string         `json:"event,omitempty"`
	Snapshot  round.Snapshot `json:"snapshot"`
}

// RejectedData explains why a submit was ignored
type RejectedData struct {
	Reason string `json:"reason"`
}

// ErrorData reports a malformed or unknown client message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
