/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains HandleWebSocket, which rate limits connection attempts, upgrades the
HTTP connection, assigns the connection identity and starts the client pumps.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"chatrelay/internal/app/chat"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/limiter"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/randx"
	"chatrelay/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// Joining a room happens over the socket, so the request carries no parameters.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connectionID := randx.ConnectionID()
		client := chat.NewClient(
			deps.Hub,
			connectionID,
			conn,
			rate.Limit(deps.Config.MessageRate),
			deps.Config.MessageBurst,
		)

		if !deps.Hub.Register(client) {
			logx.Warn("WebSocket connection rejected: Hub stopped.", "connection_id", connectionID)
			conn.Close()
			return
		}

		logx.Info("WebSocket connection established", "connection_id", connectionID)

		go client.WritePump()

		client.ReadPump()
	}
}
