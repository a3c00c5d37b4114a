/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses, acknowledgments and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Only text frames are supported.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrUnsupportedEventType: {Code: ErrUnsupportedEventType, Message: "Unsupported event type: %s."},

	// 2xxx: Room and Content Business Logic Errors
	ErrRoomNotFound:         {Code: ErrRoomNotFound, Message: "Chat room not found.", Status: http.StatusNotFound},
	ErrProfanityNotAllowed:  {Code: ErrProfanityNotAllowed, Message: "Profanity is not allowed!"},
	ErrUsernameRoomRequired: {Code: ErrUsernameRoomRequired, Message: "Username and room are required!"},
	ErrUsernameInUse:        {Code: ErrUsernameInUse, Message: "Username is in use!"},
	ErrAlreadyJoined:        {Code: ErrAlreadyJoined, Message: "You have already joined a room."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
