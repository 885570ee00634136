package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/model"
	"taskboard/internal/notify"
	"taskboard/internal/realtime"
	"taskboard/internal/repository/memory"
	"taskboard/internal/server"
	"taskboard/internal/service"
)

type fixture struct {
	router *gin.Engine
	store  *memory.Store
	hub    *realtime.Hub
	issuer *auth.TokenIssuer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := logrus.New()
	l.SetOutput(io.Discard)

	store := memory.NewStore()
	hub := realtime.NewHub(8)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	router := server.NewRouter(&config.Config{AppEnv: "local"}, logrus.NewEntry(l), server.Deps{
		Store:     store,
		Hub:       hub,
		Transport: hub,
		Issuer:    issuer,
		Policy:    notify.WorkspaceScoped,
	})
	return &fixture{router: router, store: store, hub: hub, issuer: issuer}
}

func (f *fixture) user(t *testing.T, name string) (model.User, string) {
	t.Helper()
	u := model.User{UserName: name, Email: name + "@example.com"}
	require.NoError(t, f.store.Users().Create(context.Background(), &u))
	token, err := f.issuer.Generate(u.ID)
	require.NoError(t, err)
	return u, token
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func TestHealth(t *testing.T) {
	f := setup(t)

	resp := f.do(t, "GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := setup(t)

	for _, path := range []string{"/tasks", "/notifications", "/workspace", "/boards/urgency"} {
		resp := f.do(t, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}
	resp := f.do(t, "GET", "/tasks", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestTaskFlow(t *testing.T) {
	f := setup(t)
	_, annToken := f.user(t, "ann")
	bob, bobToken := f.user(t, "bob")
	conn := f.hub.Register(bob.ID)

	// create
	resp := f.do(t, "POST", "/task", annToken, map[string]any{
		"title":           "Launch",
		"assignedUserIds": []uuid.UUID{bob.ID},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created service.CreateTaskResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, "Launch", created.Task.Title)
	assert.Equal(t, 0, created.Task.Order)

	select {
	case payload := <-conn.Messages():
		assert.Equal(t, notify.KindTaskCreated, payload.Kind)
	default:
		t.Fatal("assignee was not notified of the new task")
	}

	// add a column and move the task into it
	resp = f.do(t, "POST", "/column", annToken, map[string]any{"name": "done", "boardId": created.BoardID})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var column model.Column
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &column))

	resp = f.do(t, "PATCH", "/task/move", annToken, map[string]any{"taskId": created.Task.ID, "columnId": column.ID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// board reflects the move
	resp = f.do(t, "GET", "/board/"+created.BoardID.String(), annToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var board service.BoardView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &board))
	require.Len(t, board.Columns, 2)
	assert.Empty(t, board.Columns[0].Tasks)
	require.Len(t, board.Columns[1].Tasks, 1)
	assert.Equal(t, created.Task.ID, board.Columns[1].Tasks[0].ID)

	// bob sees the move in his notifications
	resp = f.do(t, "GET", "/notifications", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `Task \"Launch\" moved to column \"done\"`)

	// ann cannot delete bob's notifications
	var bobs []model.Notification
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bobs))
	require.NotEmpty(t, bobs)
	resp = f.do(t, "DELETE", "/notifications/"+bobs[0].ID.String(), annToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// delete
	resp = f.do(t, "DELETE", "/task/"+created.Task.ID.String(), annToken, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = f.do(t, "GET", "/task/"+created.Task.ID.String(), annToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateTaskSkipsBlankEntries(t *testing.T) {
	f := setup(t)
	_, token := f.user(t, "ann")

	resp := f.do(t, "POST", "/task", token, map[string]any{
		"title":    "Launch",
		"subtasks": []map[string]any{{"title": "ok"}, {"isDone": true}},
		"comments": []map[string]any{{"content": "hi"}, {"content": ""}},
	})

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created service.CreateTaskResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.Len(t, created.Task.Subtasks, 1)
	assert.Equal(t, "ok", created.Task.Subtasks[0].Title)
	require.Len(t, created.Task.Comments, 1)
	assert.Equal(t, "hi", created.Task.Comments[0].Content)
}

func TestStreamRequiresToken(t *testing.T) {
	f := setup(t)

	resp := f.do(t, "GET", "/stream", "", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
