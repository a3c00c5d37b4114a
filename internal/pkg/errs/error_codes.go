/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific protocol or system errors both inside the server
and in the frames and HTTP responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request or frame parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates a WebSocket frame that is not a text frame.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body or frame JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that extra content followed valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrUnsupportedEventType indicates that a WebSocket frame carried an unknown event type.
	ErrUnsupportedEventType = 1008
)

// 2xxx: Room and Content Business Logic Errors
const (
	// ErrRoomNotFound indicates that no user currently occupies the requested room.
	ErrRoomNotFound = 2103

	// ErrProfanityNotAllowed indicates that a chat message was flagged by the profanity filter.
	ErrProfanityNotAllowed = 2202

	// ErrUsernameRoomRequired indicates that a join request had an empty username or room.
	ErrUsernameRoomRequired = 2301

	// ErrUsernameInUse indicates that another occupant of the room already uses the username.
	ErrUsernameInUse = 2302

	// ErrAlreadyJoined indicates that the connection already belongs to a room.
	ErrAlreadyJoined = 2303
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
