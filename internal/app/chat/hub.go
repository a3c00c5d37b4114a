/*
Package chat contains the WebSocket runtime that carries the chat protocol.

This file defines the Hub, the single event loop that owns every connection's protocol
state. Inbound events from all connections are applied one at a time, so a directory
change, the roster snapshot taken after it and the enqueueing of the resulting events
happen as one step relative to every other event. Events committed first are
broadcast first.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/internal/app/directory"
	"chatrelay/internal/app/session"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/metrics"
	"chatrelay/internal/pkg/randx"
)

const inboundChannelBuffer = 1024

// inboundEvent is one unit of work for the Hub loop. Exactly one of event or fault is used.
type inboundEvent struct {
	client *Client
	ackID  string
	event  session.Inbound
	fault  *errs.CustomError
}

// Hub routes inbound events through the session protocol and fans results out to clients.
type Hub struct {
	// protocol computes acknowledgments and deliveries for each inbound event.
	protocol *session.Protocol

	// dir is read for the joined-users gauge.
	dir *directory.Directory

	// clients maps connection ids to live clients. Only the Run goroutine touches it.
	clients map[string]*Client

	// register receives clients whose pumps are about to start.
	register chan *Client

	// inbound receives decoded events and transport faults from client read pumps.
	inbound chan inboundEvent

	// stopChan is closed to make Run return.
	stopChan chan struct{}
	stopOnce sync.Once

	// done is closed when Run has returned and every send queue is closed.
	done chan struct{}

	logger zerolog.Logger
}

// NewHub constructs a Hub. Call Run in its own goroutine before registering clients.
func NewHub(protocol *session.Protocol, dir *directory.Directory) *Hub {
	return &Hub{
		protocol: protocol,
		dir:      dir,
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		inbound:  make(chan inboundEvent, inboundChannelBuffer),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logx.Component("hub"),
	}
}

// Run is the Hub event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case in := <-h.inbound:
			h.handle(in)

		case <-h.stopChan:
			h.closeAll()
			h.logger.Info().Msg("Hub loop stopped.")
			return
		}
	}
}

// Register hands a client to the Hub. It reports false if the Hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// submit queues an inbound event, giving up once the Hub has stopped.
func (h *Hub) submit(in inboundEvent) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.inbound <- in:
		return true
	case <-h.done:
		return false
	}
}

// Shutdown stops the loop, closes every client's send queue and waits for Run to return.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	<-h.done

	h.logger.Info().Msg("Hub shutdown complete.")
}

func (h *Hub) addClient(client *Client) {
	if client == nil {
		h.logger.Warn().Msg("Received nil client registration; skipping.")
		return
	}

	if !randx.IsValidID(client.id) {
		h.logger.Warn().Str("connection_id", client.id).Msg("Rejecting client with malformed connection id.")
		client.closeSend()
		return
	}

	if _, exists := h.clients[client.id]; exists {
		h.logger.Warn().Str("connection_id", client.id).Msg("Rejecting client with duplicate connection id.")
		client.closeSend()
		return
	}

	h.clients[client.id] = client
	metrics.Connections.Inc()

	h.logger.Debug().
		Str("connection_id", client.id).
		Int("total_connections", len(h.clients)).
		Msg("Client registered.")
}

// handle applies one inbound event for a registered client.
func (h *Hub) handle(in inboundEvent) {
	client := in.client
	if current, ok := h.clients[client.id]; !ok || current != client {
		// Dropped clients have already been through the disconnect transition.
		return
	}

	if in.fault != nil {
		metrics.Rejected.WithLabelValues(rejectReason(in.fault)).Inc()
		frame, err := encodeError(in.ackID, in.fault)
		h.sendFrame(client, frame, err)
		return
	}

	metrics.InboundEvents.WithLabelValues(string(in.event.Type)).Inc()

	next := h.apply(client, in.event, in.ackID)

	if in.event.Type == session.EventJoin && next == session.StateUnjoined {
		h.logger.Info().Str("connection_id", client.id).Msg("Join failed. Closing connection.")
		h.removeClient(client)
	}
}

// apply runs the protocol transition, delivers its events and then acknowledges the
// originating client. It returns the new state.
func (h *Hub) apply(client *Client, ev session.Inbound, ackID string) session.State {
	next, res := h.protocol.Dispatch(client.id, client.state, ev)
	client.state = next

	if res.Err != nil {
		metrics.Rejected.WithLabelValues(rejectReason(res.Err)).Inc()
	}

	h.deliver(res.Deliveries)

	if res.Ack != nil && ackID != "" {
		frame, err := encodeAck(ackID, res.Ack)
		h.sendFrame(client, frame, err)
	}

	if next == session.StateClosed {
		h.removeClient(client)
	}

	metrics.JoinedUsers.Set(float64(h.dir.Count()))

	return next
}

// deliver enqueues every delivery in order. Clients whose queue is full are dropped
// after the whole batch has been attempted.
func (h *Hub) deliver(deliveries []session.Delivery) {
	var slow []*Client

	for _, d := range deliveries {
		payload, err := encodeEvent(d.Event)
		if err != nil {
			h.logger.Error().Err(err).Str("event", string(d.Event.Type)).Msg("Error marshaling event for broadcast.")
			continue
		}

		for _, id := range d.Recipients {
			client, ok := h.clients[id]
			if !ok {
				continue
			}
			if !client.enqueue(payload) {
				slow = append(slow, client)
				continue
			}
			metrics.Deliveries.WithLabelValues(string(d.Event.Type)).Inc()
		}
	}

	for _, client := range slow {
		h.drop(client)
	}
}

// drop forces a client through the disconnect transition so the rest of its room is
// told it left, then closes its queue.
func (h *Hub) drop(client *Client) {
	if current, ok := h.clients[client.id]; !ok || current != client {
		return
	}

	h.logger.Warn().Str("connection_id", client.id).Msg("Client send queue full, dropping connection.")

	h.apply(client, session.Inbound{Type: session.EventDisconnect}, "")
}

func (h *Hub) sendFrame(client *Client, payload []byte, err error) {
	if err != nil {
		h.logger.Error().Err(err).Str("connection_id", client.id).Msg("Error marshaling frame.")
		return
	}
	if !client.enqueue(payload) {
		h.logger.Warn().Str("connection_id", client.id).Msg("Client send queue full, frame dropped.")
	}
}

func (h *Hub) removeClient(client *Client) {
	if current, ok := h.clients[client.id]; ok && current == client {
		delete(h.clients, client.id)
		metrics.Connections.Dec()
	}
	client.closeSend()
}

func (h *Hub) closeAll() {
	for id, client := range h.clients {
		client.closeSend()
		delete(h.clients, id)
		metrics.Connections.Dec()
	}
}

// rejectReason maps a rejection to the reason label of the rejected counter.
func rejectReason(err error) string {
	switch {
	case errs.HasCode(err, errs.ErrProfanityNotAllowed):
		return "profanity"
	case errs.HasCode(err, errs.ErrUsernameInUse):
		return "username_in_use"
	case errs.HasCode(err, errs.ErrUsernameRoomRequired):
		return "validation"
	case errs.HasCode(err, errs.ErrAlreadyJoined):
		return "already_joined"
	case errs.HasCode(err, errs.ErrRateLimitExceeded):
		return "rate_limited"
	case errs.HasCode(err, errs.ErrUnsupportedMediaType):
		return "binary_frame"
	default:
		return "malformed"
	}
}
