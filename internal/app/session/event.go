/*
Package session implements the per-connection chat protocol.

The Protocol turns one inbound event from one connection into an acknowledgment for
that connection and a list of deliveries, each pairing an outbound event with the
exact set of connections that must receive it. It holds no state of its own: user
identity and room membership live in the Directory, and the per-connection State is
owned by the transport and threaded through Dispatch.
*/
package session

import (
	"chatrelay/internal/app/user"
)

// EventType names inbound and outbound protocol events.
type EventType string

// Inbound events.
const (
	EventJoin         EventType = "join"
	EventSendMessage  EventType = "sendMessage"
	EventSendLocation EventType = "sendLocation"

	// EventDisconnect is synthesized by the transport when a connection goes away.
	EventDisconnect EventType = "disconnect"
)

// Outbound events.
const (
	EventMessage         EventType = "message"
	EventLocationMessage EventType = "locationMessage"
	EventRoomData        EventType = "roomData"
)

// JoinRequest is the payload of a join event.
type JoinRequest struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// SendMessageRequest is the payload of a sendMessage event.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// LocationRequest is the payload of a sendLocation event.
type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Inbound is one decoded event received from a connection. Only the field
// matching Type is meaningful.
type Inbound struct {
	Type     EventType
	Join     JoinRequest
	Message  SendMessageRequest
	Location LocationRequest
}

// Message is the payload of an outbound message event.
type Message struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// LocationMessage is the payload of an outbound locationMessage event.
type LocationMessage struct {
	Username  string `json:"username"`
	MapsURL   string `json:"mapsUrl"`
	CreatedAt int64  `json:"createdAt"`
}

// RoomData is the payload of an outbound roomData event.
type RoomData struct {
	Room  string      `json:"room"`
	Users user.Roster `json:"users"`
}

// Event is one outbound event.
type Event struct {
	Type    EventType
	Payload any
}

// Delivery addresses an Event to a resolved set of connections.
type Delivery struct {
	Recipients []string
	Event      Event
}

// Ack is the acknowledgment returned to the originating connection.
type Ack struct {
	Error  string `json:"error,omitempty"`
	Status string `json:"status,omitempty"`
}
