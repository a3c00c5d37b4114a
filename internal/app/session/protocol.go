package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"chatrelay/internal/app/directory"
	"chatrelay/internal/app/user"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

const (
	// AdminName is the sender shown on system announcements.
	AdminName = "Admin"

	// WelcomeText greets a connection that has just joined.
	WelcomeText = "Welcome!"

	// DeliveredStatus acknowledges a broadcast chat message.
	DeliveredStatus = "Delivered"

	mapsURLFormat = "https://google.com/maps?q=%s,%s"
)

// State is the lifecycle position of one connection.
type State int

const (
	StateUnjoined State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnjoined:
		return "unjoined"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Filter decides whether chat text must be rejected.
type Filter interface {
	IsProfane(text string) bool
}

// Result is the outcome of one inbound event.
type Result struct {
	// Ack is returned to the originating connection; nil means no acknowledgment.
	Ack *Ack

	// Deliveries are the outbound events in the order they must be sent.
	Deliveries []Delivery

	// Err is the protocol error surfaced in Ack.Error, if any.
	Err *errs.CustomError
}

// Protocol drives join, message, location and disconnect transitions over a Directory.
type Protocol struct {
	dir    *directory.Directory
	filter Filter
	now    func() time.Time
	logger zerolog.Logger
}

// Option customizes a Protocol.
type Option func(*Protocol)

// WithClock replaces the clock used to stamp createdAt.
func WithClock(now func() time.Time) Option {
	return func(p *Protocol) {
		p.now = now
	}
}

// NewProtocol constructs a Protocol over dir using filter to screen chat text.
func NewProtocol(dir *directory.Directory, filter Filter, opts ...Option) *Protocol {
	p := &Protocol{
		dir:    dir,
		filter: filter,
		now:    time.Now,
		logger: logx.Component("session"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dispatch applies ev from the connection in the given state and returns the next
// state with the result. Messages and locations from an unjoined connection, and any
// event from a closed one, are protocol violations: they yield an empty Result.
func (p *Protocol) Dispatch(connectionID string, state State, ev Inbound) (State, Result) {
	if state == StateClosed {
		p.violation(connectionID, state, ev.Type)
		return StateClosed, Result{}
	}

	switch ev.Type {
	case EventDisconnect:
		return StateClosed, p.Disconnect(connectionID)

	case EventJoin:
		res := p.Join(connectionID, ev.Join)
		if res.Err != nil {
			return state, res
		}
		return StateJoined, res

	case EventSendMessage:
		if state != StateJoined {
			p.violation(connectionID, state, ev.Type)
			return state, Result{}
		}
		return state, p.SendMessage(connectionID, ev.Message.Text)

	case EventSendLocation:
		if state != StateJoined {
			p.violation(connectionID, state, ev.Type)
			return state, Result{}
		}
		return state, p.SendLocation(connectionID, ev.Location)

	default:
		p.violation(connectionID, state, ev.Type)
		return state, Result{}
	}
}

func (p *Protocol) violation(connectionID string, state State, eventType EventType) {
	p.logger.Warn().
		Str("connection_id", connectionID).
		Stringer("state", state).
		Str("event", string(eventType)).
		Msg("Ignoring event not allowed in current state.")
}

// Join registers the connection in a room. On success the joiner is welcomed, the
// other occupants are told about the arrival and everyone, joiner included, gets the
// new roster. On failure only the acknowledgment carries the error.
func (p *Protocol) Join(connectionID string, req JoinRequest) Result {
	joined, err := p.dir.AddUser(connectionID, req.Username, req.Room)
	if err != nil {
		p.logger.Info().
			Str("connection_id", connectionID).
			Int("code", err.Code).
			Msg("Join rejected.")
		return Result{Ack: &Ack{Error: err.Message}, Err: err}
	}

	occupants := p.dir.GetUsersInRoom(joined.Room)
	createdAt := p.timestamp()

	p.logger.Info().
		Str("connection_id", connectionID).
		Str("room", joined.Room).
		Int("occupants", len(occupants)).
		Msg("User joined room.")

	deliveries := []Delivery{{
		Recipients: []string{connectionID},
		Event:      p.adminMessage(WelcomeText, createdAt),
	}}
	deliveries = appendDelivery(deliveries,
		recipients(occupants, connectionID),
		p.adminMessage(fmt.Sprintf("%s has joined!", joined.Username), createdAt),
	)
	deliveries = appendDelivery(deliveries,
		recipients(occupants, ""),
		roomData(joined.Room, occupants),
	)

	return Result{Ack: &Ack{}, Deliveries: deliveries}
}

// SendMessage broadcasts text to the sender's room, sender included, unless the
// filter flags it, in which case only the sender hears about it.
func (p *Protocol) SendMessage(connectionID, text string) Result {
	sender, ok := p.dir.GetUser(connectionID)
	if !ok {
		p.violation(connectionID, StateUnjoined, EventSendMessage)
		return Result{}
	}

	if p.filter.IsProfane(text) {
		err := errs.NewError(errs.ErrProfanityNotAllowed)
		p.logger.Info().
			Str("connection_id", connectionID).
			Str("room", sender.Room).
			Msg("Message rejected by profanity filter.")
		return Result{Ack: &Ack{Error: err.Message}, Err: err}
	}

	occupants := p.dir.GetUsersInRoom(sender.Room)
	msg := Event{
		Type: EventMessage,
		Payload: Message{
			Username:  sender.Username,
			Text:      text,
			CreatedAt: p.timestamp(),
		},
	}

	return Result{
		Ack:        &Ack{Status: DeliveredStatus},
		Deliveries: appendDelivery(nil, recipients(occupants, ""), msg),
	}
}

// SendLocation broadcasts a maps link for the coordinates to the sender's room,
// sender included. Coordinates are not validated.
func (p *Protocol) SendLocation(connectionID string, loc LocationRequest) Result {
	sender, ok := p.dir.GetUser(connectionID)
	if !ok {
		p.violation(connectionID, StateUnjoined, EventSendLocation)
		return Result{}
	}

	occupants := p.dir.GetUsersInRoom(sender.Room)
	msg := Event{
		Type: EventLocationMessage,
		Payload: LocationMessage{
			Username:  sender.Username,
			MapsURL:   MapsURL(loc.Latitude, loc.Longitude),
			CreatedAt: p.timestamp(),
		},
	}

	return Result{
		Ack:        &Ack{},
		Deliveries: appendDelivery(nil, recipients(occupants, ""), msg),
	}
}

// Disconnect removes the connection's User, if any, and tells the remaining
// occupants who left along with the new roster.
func (p *Protocol) Disconnect(connectionID string) Result {
	left, ok := p.dir.RemoveUser(connectionID)
	if !ok {
		return Result{}
	}

	remaining := p.dir.GetUsersInRoom(left.Room)
	targets := recipients(remaining, "")

	p.logger.Info().
		Str("connection_id", connectionID).
		Str("room", left.Room).
		Int("occupants", len(remaining)).
		Msg("User left room.")

	var deliveries []Delivery
	deliveries = appendDelivery(deliveries, targets,
		p.adminMessage(fmt.Sprintf("%s has left!", left.Username), p.timestamp()))
	deliveries = appendDelivery(deliveries, targets, roomData(left.Room, remaining))

	return Result{Deliveries: deliveries}
}

// MapsURL builds the link sent in locationMessage events.
func MapsURL(latitude, longitude float64) string {
	return fmt.Sprintf(mapsURLFormat,
		strconv.FormatFloat(latitude, 'f', -1, 64),
		strconv.FormatFloat(longitude, 'f', -1, 64),
	)
}

func (p *Protocol) timestamp() int64 {
	return p.now().UnixMilli()
}

func (p *Protocol) adminMessage(text string, createdAt int64) Event {
	return Event{
		Type: EventMessage,
		Payload: Message{
			Username:  AdminName,
			Text:      text,
			CreatedAt: createdAt,
		},
	}
}

func roomData(room string, occupants []user.User) Event {
	return Event{
		Type: EventRoomData,
		Payload: RoomData{
			Room:  room,
			Users: user.NewRoster(occupants),
		},
	}
}

// recipients lists the connection ids of users, leaving out except.
func recipients(users []user.User, except string) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.ConnectionID != except {
			ids = append(ids, u.ConnectionID)
		}
	}
	return ids
}

// appendDelivery adds a delivery unless nobody would receive it.
func appendDelivery(deliveries []Delivery, to []string, ev Event) []Delivery {
	if len(to) == 0 {
		return deliveries
	}
	return append(deliveries, Delivery{Recipients: to, Event: ev})
}
