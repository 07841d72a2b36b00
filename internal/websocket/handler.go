package websocket

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string) {
	client := NewClient(hub, sessionID, c)
	hub.Register(client)

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}

// ServeEventStream streams the session's events as server-sent events, one
// `data:` line per event. It returns once the response writer is set up; the
// stream ends when the peer disconnects or the hub drops the viewer.
func ServeEventStream(hub *Hub, ctx *fiber.Ctx, sessionID string) error {
	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	client := NewClient(hub, sessionID, nil)
	hub.Register(client)

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer hub.Unregister(client)

		// Comment line so proxies and clients see the stream open.
		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		// Keep-alive comments also surface a vanished peer as a write error.
		ticker := time.NewTicker(pingPeriod / 3)
		defer ticker.Stop()

		for {
			select {
			case frame, ok := <-client.Send:
				if !ok {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", frame)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}
