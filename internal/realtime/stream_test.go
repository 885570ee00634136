package realtime_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/notify"
	"taskboard/internal/realtime"
)

func setupStream(hub *realtime.Hub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	resolve := func(c *gin.Context) (uuid.UUID, bool) {
		id, err := uuid.Parse(c.Query("user"))
		return id, err == nil
	}
	r.GET("/stream", realtime.NewStreamHandler(hub, resolve, quietLog()).Stream)
	return r
}

// nextEvent reads until the named event and returns its data line.
func nextEvent(t *testing.T, reader *bufio.Reader, name string) string {
	t.Helper()
	found := false
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "event:"+name {
			found = true
			continue
		}
		if found && strings.HasPrefix(line, "data:") {
			return strings.TrimPrefix(line, "data:")
		}
	}
}

func TestStream_Unauthorized(t *testing.T) {
	router := setupStream(realtime.NewHub(1))
	req, _ := http.NewRequest("GET", "/stream", nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid or expired token")
}

func TestStream_DeliversNotifications(t *testing.T) {
	hub := realtime.NewHub(4)
	srv := httptest.NewServer(setupStream(hub))
	defer srv.Close()
	userID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/stream?user="+userID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)
	ready := nextEvent(t, reader, "ready")
	assert.Contains(t, ready, "connectionId")

	require.NoError(t, hub.Send(ctx, userID, notify.Payload{Message: "Task moved", Kind: notify.KindTaskMoved}))
	data := nextEvent(t, reader, "notification")
	assert.Contains(t, data, `"message":"Task moved"`)
	assert.Contains(t, data, `"kind":"task.moved"`)

	cancel()
	assert.Eventually(t, func() bool { return !hub.Connected(userID) }, 2*time.Second, 10*time.Millisecond)
}
