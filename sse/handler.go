package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/observability"
)

// keepAliveInterval should be shorter than proxy idle timeouts (typically 60s).
const keepAliveInterval = 30 * time.Second

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID string            `json:"client_id"`
	UserID   string            `json:"user_id,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Handler returns a gin handler that serves an SSE session for the named
// stream. Each connection registers a fresh client on the hub and streams
// its events until the request context ends.
func Handler(hub *Hub, stream string, opts ...ClientOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			c.String(http.StatusInternalServerError, "streaming not supported")
			return
		}

		// SSE connections are long-lived; the server's WriteTimeout must
		// not cut them off.
		rc := http.NewResponseController(c.Writer)
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			logger.Warn("sse could not disable write deadline", logger.Fields(
				logger.FieldStream, stream,
				logger.FieldError, err.Error(),
			))
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		client := NewClient(stream, opts...)
		hub.Register(client)
		defer hub.Unregister(client)

		ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanSSESession)
		span.SetAttributes(
			attribute.String(observability.AttrStreamName, stream),
			attribute.String(observability.AttrClientID, client.ID()),
		)
		defer span.End()

		connected, _ := json.Marshal(ConnectedEvent{
			ClientID: client.ID(),
			UserID:   client.UserID(),
			Metadata: client.Metadata(),
		})
		_, _ = fmt.Fprintf(c.Writer, "event: %s\n", EventTypeConnected)
		_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", connected)
		flusher.Flush()

		logger.Debug("sse client connected", logger.Fields(
			logger.FieldClientID, client.ID(),
			"remote_addr", c.Request.RemoteAddr,
		))

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		delivered := int64(0)
		for {
			select {
			case <-ctx.Done():
				span.SetAttributes(attribute.Int64(observability.AttrItemCount, delivered))
				logger.Debug("sse client disconnected", logger.Fields(
					logger.FieldClientID, client.ID(),
					"reason", ctx.Err().Error(),
				))
				return

			case event, ok := <-client.Events():
				if !ok {
					span.SetAttributes(attribute.Int64(observability.AttrItemCount, delivered))
					return
				}
				_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", event)
				flusher.Flush()
				delivered++

			case <-keepAlive.C:
				// SSE comment lines (leading colon) keep proxies from
				// idling out the connection.
				_, _ = fmt.Fprintf(c.Writer, ": %s %d\n\n", EventTypeKeepAlive, time.Now().Unix())
				flusher.Flush()
			}
		}
	}
}
