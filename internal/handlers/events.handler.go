package handlers

import (
	"bufio"
	"encoding/json"
	"time"

	"github.com/comanda-pos/comanda/internal/broadcast"
	xhttp "github.com/comanda-pos/comanda/pkg/http"
	"github.com/fasthttp/router"
)

const heartbeatInterval = 15 * time.Second

type EventsHandler struct {
	broadcaster broadcast.Broadcaster
}

func RegisterEventsRoutes(e *router.Group, h *EventsHandler) {
	e.GET("/events", h.Stream)
}

func NewEventsHandler(broadcaster broadcast.Broadcaster) *EventsHandler {
	return &EventsHandler{
		broadcaster: broadcaster,
	}
}

// Stream is the SSE feed of one topic. The subscription uses the
// broadcaster's drop-on-full contract, so a stalled client misses
// events instead of stalling the publishers.
func (h *EventsHandler) Stream(ctx *xhttp.RequestCtx) {
	topic := query(ctx, "topic")
	if topic == "" {
		writeError(ctx, 400, "topic is required")
		return
	}

	events, cancel := h.broadcaster.Subscribe(topic)

	ctx.Response.Header.Set("Content-Type", "text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				b, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if _, err := w.WriteString("event: " + ev.Type + "\ndata: " + string(b) + "\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-heartbeat.C:
				// SSE comment line; keeps proxies from closing the stream.
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}
