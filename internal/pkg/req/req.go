/*
Package req provides helpers for decoding client-supplied JSON into typed payloads.

Payloads are decoded strictly: unknown fields, trailing content and missing bodies are
rejected with the matching application error so the transport can report them to the client.
*/
package req

import (
	"bytes"
	"encoding/json"

	"chatrelay/internal/pkg/errs"
)

// MaxPayloadBytes bounds the size of a single decoded payload.
const MaxPayloadBytes = 8192

// DecodePayload decodes the raw JSON payload of a frame into dst.
func DecodePayload(raw json.RawMessage, dst any) *errs.CustomError {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if len(trimmed) > MaxPayloadBytes {
		return errs.NewError(errs.ErrInvalidParams)
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
