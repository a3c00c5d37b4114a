/*
Package chat contains the WebSocket runtime that carries the chat protocol.

This file defines the Client struct, representing one WebSocket connection. ReadPump decodes
inbound frames and forwards them to the Hub; WritePump drains the send queue the Hub fills.
*/
package chat

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"chatrelay/internal/app/session"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// sendQueueSize is the number of outbound frames buffered per client.
	sendQueueSize = 256
)

// Client struct represents an active WebSocket connection.
type Client struct {
	// id is the opaque connection identity used as the Directory key.
	id string

	// hub receives this client's inbound events.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel of encoded frames waiting to be written. Only the Hub sends on
	// or closes it.
	send chan []byte

	// sendClosed records that send was closed. Hub goroutine only.
	sendClosed bool

	// state is the protocol state of this connection. Hub goroutine only.
	state session.State

	// limiter throttles inbound frames.
	limiter *rate.Limiter

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection. Inbound frames are limited
// to messageRate per second with the given burst.
func NewClient(hub *Hub, id string, wsConn *websocket.Conn, messageRate rate.Limit, burst int) *Client {
	return &Client{
		id:      id,
		hub:     hub,
		conn:    wsConn,
		send:    make(chan []byte, sendQueueSize),
		state:   session.StateUnjoined,
		limiter: rate.NewLimiter(messageRate, burst),
		logger:  logx.Logger().With().Str("connection_id", id).Logger(),
	}
}

// enqueue queues a frame without blocking. It reports false when the queue is full or closed.
func (c *Client) enqueue(frame []byte) bool {
	if c.sendClosed {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend closes the send queue once; WritePump then flushes it and closes the socket.
func (c *Client) closeSend() {
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

// ReadPump handles reading frames from the WebSocket connection. When the connection
// fails or closes, it reports a disconnect to the Hub.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		if !c.processInboundFrame(messageType, frame) {
			break
		}
	}
}

// cleanupOnDisconnect reports the disconnect and closes the socket.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Debug().Msg("Client connection cleanup starting.")

	c.hub.submit(inboundEvent{
		client: c,
		event:  session.Inbound{Type: session.EventDisconnect},
	})

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame throttles, decodes and forwards one frame. Only text frames carry
// events. It returns false once the Hub has stopped.
func (c *Client) processInboundFrame(messageType int, frame []byte) bool {
	if !c.limiter.Allow() {
		c.logger.Warn().Msg("Client exceeded inbound frame rate; discarding frame.")
		return c.hub.submit(inboundEvent{
			client: c,
			fault:  errs.NewError(errs.ErrRateLimitExceeded),
		})
	}

	if messageType != websocket.TextMessage {
		c.logger.Warn().Int("message_type", messageType).Msg("Client sent non-text frame")
		return c.hub.submit(inboundEvent{
			client: c,
			fault:  errs.NewError(errs.ErrUnsupportedMediaType),
		})
	}

	event, ackID, decodeErr := DecodeInbound(frame)
	if decodeErr != nil {
		c.logger.Warn().Int("code", decodeErr.Code).Msg("Client sent invalid frame")
		return c.hub.submit(inboundEvent{client: c, ackID: ackID, fault: decodeErr})
	}

	return c.hub.submit(inboundEvent{client: c, ackID: ackID, event: event})
}

// WritePump writes queued frames to the WebSocket connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send queue. A closed queue produces
// a close frame. Returns false when WritePump should stop.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
