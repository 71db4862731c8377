package ws

import (
	"context"
	"encoding/json"
)

type Event struct {
	Type    string          `json:"type"`
	TraceID string          `json:"trace_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type EventHandler func(ctx context.Context, evt Event, c *Client) error

const (
	EventClick   = "click"
	EventNewGame = "new_game"
	EventRetryAI = "retry_ai"
	EventState   = "state"
	EventError   = "error"
	EventClosed  = "closed"
)

type PayloadError struct {
	Message string `json:"message"`
}

type PayloadClick struct {
	Square string `json:"square" validate:"required,len=2"`
}

type PayloadNewGame struct {
	Mode  string `json:"mode" validate:"required,oneof=local ai remote"`
	Color string `json:"color" validate:"omitempty,oneof=w b white black"`
}

func NewEvent(evtType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return NewEventStruct(evtType, b, ""), nil
}

func NewErrorEvent(traceID, message string) (Event, error) {
	b, err := json.Marshal(PayloadError{Message: message})
	if err != nil {
		return Event{}, err
	}
	return NewEventStruct(EventError, b, traceID), nil
}

func NewEventStruct(evtType string, payload []byte, traceID string) Event {
	return Event{
		Type:    evtType,
		TraceID: traceID,
		Payload: payload,
	}
}
