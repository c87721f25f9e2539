package api

import (
	"io"

	"github.com/gin-gonic/gin"
)

// StreamEvents handles GET /api/events/:channel, streaming order events
// to the client as server-sent events. Kitchen clients listen on
// "kitchen"; waitstaff clients listen on "table-<id>" channels.
func (h *Handler) StreamEvents(c *gin.Context) {
	channel := c.Param("channel")

	ch := h.hub.Subscribe(channel)
	defer h.hub.Unsubscribe(channel, ch)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
