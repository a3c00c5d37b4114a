/*
Package user contains the data structure describing one active chat participant.

A User is bound to exactly one live connection. It is created by a successful join,
destroyed on disconnect, and never mutated in place.
*/
package user

// User represents the identity of a chat participant within a room.
type User struct {

	// ConnectionID is the opaque transport identity of the participant's connection.
	ConnectionID string `json:"-"`

	// Username is the display name, trimmed but with its original casing.
	Username string `json:"username"`

	// Room is the room name, trimmed but with its original casing.
	Room string `json:"room"`
}

// Roster is the public projection of a room's occupants sent in roomData events.
type Roster []RosterEntry

// RosterEntry is one occupant as listed in a roster.
type RosterEntry struct {
	Username string `json:"username"`
}

// NewRoster projects users to roster entries, keeping their order.
func NewRoster(users []User) Roster {
	roster := make(Roster, 0, len(users))
	for _, u := range users {
		roster = append(roster, RosterEntry{Username: u.Username})
	}
	return roster
}
