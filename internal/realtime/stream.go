package realtime

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const heartbeatInterval = 25 * time.Second

// UserResolver authenticates a stream request.
type UserResolver func(c *gin.Context) (uuid.UUID, bool)

type StreamHandler struct {
	hub       *Hub
	resolve   UserResolver
	heartbeat time.Duration
	log       *logrus.Entry
}

func NewStreamHandler(hub *Hub, resolve UserResolver, log *logrus.Entry) *StreamHandler {
	return &StreamHandler{
		hub:       hub,
		resolve:   resolve,
		heartbeat: heartbeatInterval,
		log:       log.WithField("component", "stream"),
	}
}

// Stream serves notifications as server-sent events until the client
// disconnects or a newer stream of the same user replaces this one.
func (h *StreamHandler) Stream(c *gin.Context) {
	userID, ok := h.resolve(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	conn := h.hub.Register(userID)
	defer h.hub.Unregister(conn)
	log := h.log.WithFields(logrus.Fields{"user_id": userID, "conn_id": conn.ID})
	log.Debug("stream opened")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.SSEvent("ready", gin.H{"connectionId": conn.ID})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case payload, open := <-conn.Messages():
			if !open {
				return false
			}
			c.SSEvent("notification", payload)
			return true
		case <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"ts": time.Now().Unix()})
			return true
		}
	})
	log.Debug("stream closed")
}
