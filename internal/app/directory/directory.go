/*
Package directory holds the authoritative in-memory registry of chat participants.

A Directory maps each connection identity to exactly one User and answers room
membership queries. Rooms are not stored: a room exists while at least one User
references it. All operations run under a single lock, so concurrent joins racing
on the same room and username cannot both succeed and readers never observe a
half-applied removal.
*/
package directory

import (
	"strings"
	"sync"

	"chatrelay/internal/app/user"
	"chatrelay/internal/pkg/errs"
)

// entry is one stored User together with its precomputed normalized keys.
type entry struct {
	user    user.User
	roomKey string
	nameKey string
}

// Directory is the registry of active Users. The zero value is not usable; call New.
type Directory struct {
	// mu guards every field below. Each exported method is one critical section.
	mu sync.RWMutex

	// entries keeps Users in insertion order for deterministic roster listings.
	entries []*entry

	// byConnection indexes entries by connection identity.
	byConnection map[string]*entry

	// members maps each normalized (room, username) pair to the owning connection identity.
	members map[pairKey]string
}

// New constructs an empty Directory.
func New() *Directory {
	return &Directory{
		entries:      make([]*entry, 0),
		byConnection: make(map[string]*entry),
		members:      make(map[pairKey]string),
	}
}

// AddUser registers a User for the connection.
//
// Username and room are trimmed; if either is empty the call fails with
// ErrUsernameRoomRequired. A connection that already owns a User fails with
// ErrAlreadyJoined. A username whose normalized form is already used in the
// normalized room fails with ErrUsernameInUse. A failed call changes nothing.
// On success the stored User is returned with its original casing.
func (d *Directory) AddUser(connectionID, username, room string) (user.User, *errs.CustomError) {
	username = strings.TrimSpace(username)
	room = strings.TrimSpace(room)

	if username == "" || room == "" {
		return user.User{}, errs.NewError(errs.ErrUsernameRoomRequired)
	}

	e := &entry{
		user: user.User{
			ConnectionID: connectionID,
			Username:     username,
			Room:         room,
		},
		roomKey: Normalize(room),
		nameKey: Normalize(username),
	}
	key := pairKey{room: e.roomKey, name: e.nameKey}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byConnection[connectionID]; exists {
		return user.User{}, errs.NewError(errs.ErrAlreadyJoined)
	}

	if _, taken := d.members[key]; taken {
		return user.User{}, errs.NewError(errs.ErrUsernameInUse)
	}

	d.entries = append(d.entries, e)
	d.byConnection[connectionID] = e
	d.members[key] = connectionID

	return e.user, nil
}

// RemoveUser deletes the User owned by the connection and returns it.
// It reports false, changing nothing, when no such User exists.
func (d *Directory) RemoveUser(connectionID string) (user.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.byConnection[connectionID]
	if !ok {
		return user.User{}, false
	}

	delete(d.byConnection, connectionID)
	delete(d.members, pairKey{room: e.roomKey, name: e.nameKey})

	for i, candidate := range d.entries {
		if candidate == e {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			break
		}
	}

	return e.user, true
}

// GetUser looks up the User owned by the connection.
func (d *Directory) GetUser(connectionID string) (user.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.byConnection[connectionID]
	if !ok {
		return user.User{}, false
	}
	return e.user, true
}

// GetUsersInRoom returns the Users whose normalized room equals the normalized
// argument, in insertion order. The returned slice is a private copy.
func (d *Directory) GetUsersInRoom(room string) []user.User {
	roomKey := Normalize(room)

	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]user.User, 0)
	for _, e := range d.entries {
		if e.roomKey == roomKey {
			users = append(users, e.user)
		}
	}
	return users
}

// Count returns the total number of registered Users.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.entries)
}

// RoomSummary describes one active room.
type RoomSummary struct {
	Room      string `json:"room"`
	Occupants int    `json:"occupants"`
}

// Rooms lists the active rooms in the order they were first occupied, named with
// the casing used by their longest-present occupant.
func (d *Directory) Rooms() []RoomSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	index := make(map[string]int)
	rooms := make([]RoomSummary, 0)
	for _, e := range d.entries {
		i, seen := index[e.roomKey]
		if !seen {
			index[e.roomKey] = len(rooms)
			rooms = append(rooms, RoomSummary{Room: e.user.Room, Occupants: 1})
			continue
		}
		rooms[i].Occupants++
	}
	return rooms
}
