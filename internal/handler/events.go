package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Shutdown tells open event streams to close. Hijacked connections are not
// tracked by http.Server.Shutdown, so register it with RegisterOnShutdown.
func (h *Handler) Shutdown() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// streamEvents upgrades to a WebSocket and forwards store events as JSON
// text frames until the client goes away. Client messages are discarded.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	lg := zctx.From(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		lg.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	events, cancel := h.events.Subscribe(h.eventBuffer)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	lg.Debug("Event stream opened")
	for {
		select {
		case <-done:
			lg.Debug("Event stream closed by client")
			return
		case <-r.Context().Done():
			return
		case <-h.closing:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.Reset()
			encodeEvent(e, ev)
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, e.Bytes()); err != nil {
				lg.Debug("Event write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
