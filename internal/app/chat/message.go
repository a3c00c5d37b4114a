/*
Package chat contains the WebSocket runtime that carries the chat protocol.

This file defines the JSON frames exchanged over a connection: inbound event frames,
outbound event frames, acknowledgments and transport error reports.
*/
package chat

import (
	"encoding/json"

	"chatrelay/internal/app/session"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/randx"
	"chatrelay/internal/pkg/req"
)

const (
	// FrameAck answers an inbound frame that carried an ackId.
	FrameAck = "ack"

	// FrameError reports a malformed or throttled frame.
	FrameError = "error"
)

// InboundFrame is the envelope of every frame a client sends.
type InboundFrame struct {
	Type    session.EventType `json:"type"`
	AckID   string            `json:"ackId,omitempty"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

// OutboundFrame is the envelope of every frame the server sends.
type OutboundFrame struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	AckID   string `json:"ackId,omitempty"`
	Payload any    `json:"payload"`
}

// ErrorPayload is the payload of an error frame.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DecodeInbound parses a raw client frame into a protocol event and its optional ack id.
// The ack id is returned even when the payload is invalid so the error can be correlated.
func DecodeInbound(raw []byte) (session.Inbound, string, *errs.CustomError) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return session.Inbound{}, "", errs.NewError(errs.ErrInvalidJSONFormat)
	}

	in := session.Inbound{Type: frame.Type}

	var decodeErr *errs.CustomError
	switch frame.Type {
	case session.EventJoin:
		decodeErr = req.DecodePayload(frame.Payload, &in.Join)
	case session.EventSendMessage:
		decodeErr = req.DecodePayload(frame.Payload, &in.Message)
	case session.EventSendLocation:
		decodeErr = req.DecodePayload(frame.Payload, &in.Location)
	default:
		decodeErr = errs.NewError(errs.ErrUnsupportedEventType, string(frame.Type))
	}

	if decodeErr != nil {
		return session.Inbound{}, frame.AckID, decodeErr
	}
	return in, frame.AckID, nil
}

// encodeEvent marshals an outbound protocol event with a fresh message id.
func encodeEvent(ev session.Event) ([]byte, error) {
	return json.Marshal(OutboundFrame{
		Type:    string(ev.Type),
		ID:      randx.MessageID(),
		Payload: ev.Payload,
	})
}

func encodeAck(ackID string, ack *session.Ack) ([]byte, error) {
	return json.Marshal(OutboundFrame{
		Type:    FrameAck,
		AckID:   ackID,
		Payload: ack,
	})
}

func encodeError(ackID string, customErr *errs.CustomError) ([]byte, error) {
	return json.Marshal(OutboundFrame{
		Type:  FrameError,
		AckID: ackID,
		Payload: ErrorPayload{
			Code:    customErr.Code,
			Message: customErr.Message,
		},
	})
}
