package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andrei050191/La-serviciu/pkg/redis"
	"github.com/Andrei050191/La-serviciu/pkg/response"
)

// EventsHandler streams change events to clients over server-sent events,
// so every open screen can refresh when the roster or a status changes.
type EventsHandler struct {
	rdb *redis.Client
}

func NewEventsHandler(rdb *redis.Client) *EventsHandler {
	return &EventsHandler{rdb: rdb}
}

// Stream subscribes the client to the change feed.
// GET /api/v1/events
func (h *EventsHandler) Stream(c *gin.Context) {
	if h.rdb == nil {
		response.Error(c, http.StatusServiceUnavailable, 17101, "event stream unavailable")
		return
	}

	events, cancel := h.rdb.SubscribeChanges(c.Request.Context())
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("change", payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
