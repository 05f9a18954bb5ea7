package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kanban/internal/blob"
	"github.com/mesh-intelligence/kanban/internal/board"
	"github.com/mesh-intelligence/kanban/internal/store"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

func newTestServer(t *testing.T) (*store.Store, http.Handler) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	n := 0
	s, err := store.Open(context.Background(), blob.NewMemory(), store.Options{
		Logger: logger,
		NewID: func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, New(s, logger)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMutation(t *testing.T, rec *httptest.ResponseRecorder) mutationResponse {
	t.Helper()
	var resp mutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func addTasks(t *testing.T, s *store.Store, titles ...string) {
	t.Helper()
	for _, title := range titles {
		_, err := s.Dispatch(context.Background(), board.AddTask{Title: title, Description: title + " details"})
		require.NoError(t, err)
	}
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetBoard(t *testing.T) {
	s, h := newTestServer(t)
	addTasks(t, s, "one")

	rec := do(t, h, http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var b types.Board
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, s.Snapshot(), b)
}

func TestGetColumnTasks(t *testing.T) {
	s, h := newTestServer(t)
	addTasks(t, s, "one", "two")

	rec := do(t, h, http.MethodGet, "/api/columns/column-1/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []types.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "one", tasks[0].Title)

	rec = do(t, h, http.MethodGet, "/api/columns/column-9/tasks", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchAndView(t *testing.T) {
	s, h := newTestServer(t)
	addTasks(t, s, "Fix login", "Write docs")

	rec := do(t, h, http.MethodGet, "/api/tasks?q=LOGIN", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []types.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-1", tasks[0].ID)

	rec = do(t, h, http.MethodGet, "/api/tasks?q=nothing", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/view?q=docs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var views []board.ColumnView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 4)
	assert.Equal(t, 1, views[0].Count)
	require.NotNil(t, views[0].Action)
	assert.Equal(t, "Start Work", views[0].Action.Label)
}

func TestPostCommands(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantApply  bool
	}{
		{
			name:       "single envelope",
			body:       `{"type":"addTask","payload":{"title":"New","description":"d"}}`,
			wantStatus: http.StatusOK,
			wantApply:  true,
		},
		{
			name: "batch",
			body: `[{"type":"addTask","payload":{"title":"New"}},
			        {"type":"moveToNextStage","payload":{"taskId":"task-1","currentColumnId":"column-1"}}]`,
			wantStatus: http.StatusOK,
			wantApply:  true,
		},
		{
			name:       "blank title",
			body:       `[{"type":"addTask","payload":{"title":"  "}}]`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown type",
			body:       `[{"type":"archiveTask","payload":{}}]`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing task",
			body:       `[{"type":"deleteTask","payload":{"id":"task-404"}}]`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "advance from last stage",
			body:       `[{"type":"moveToNextStage","payload":{"taskId":"task-1","currentColumnId":"column-4"}}]`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "bad json",
			body:       `[{"type":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty batch",
			body:       `[]`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(t)
			rec := do(t, h, http.MethodPost, "/api/commands", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantApply, decodeMutation(t, rec).Applied)
			}
		})
	}
}

func TestPostCommandsStopsAtFirstRejection(t *testing.T) {
	s, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/commands", `[
		{"type":"addTask","payload":{"title":"kept"}},
		{"type":"deleteTask","payload":{"id":"task-404"}},
		{"type":"addTask","payload":{"title":"never"}}
	]`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Index)
	assert.Equal(t, 1, *resp.Index)
	assert.Equal(t, 1, s.Snapshot().Len())
}

func TestPostCommandsNoop(t *testing.T) {
	s, h := newTestServer(t)
	addTasks(t, s, "only")

	rec := do(t, h, http.MethodPost, "/api/commands",
		`[{"type":"moveTask","payload":{"taskId":"task-1","sourceColumnId":"column-1","destinationColumnId":"column-1","sourceIndex":0,"destinationIndex":0}}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeMutation(t, rec)
	assert.False(t, resp.Applied)
	assert.Equal(t, s.Snapshot(), resp.Board)
}

func TestPostDrop(t *testing.T) {
	s, h := newTestServer(t)
	addTasks(t, s, "a", "b")

	t.Run("outside any column", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/drop",
			`{"draggableId":"task-1","source":{"droppableId":"column-1","index":0},"destination":null}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decodeMutation(t, rec).Applied)
	})

	t.Run("same slot", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/drop",
			`{"draggableId":"task-1","source":{"droppableId":"column-1","index":0},"destination":{"droppableId":"column-1","index":0}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decodeMutation(t, rec).Applied)
	})

	t.Run("across columns", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/drop",
			`{"draggableId":"task-2","source":{"droppableId":"column-1","index":1},"destination":{"droppableId":"column-3","index":0}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeMutation(t, rec)
		assert.True(t, resp.Applied)
		assert.Equal(t, []string{"task-2"}, resp.Board.Columns[types.StageReview].TaskIDs)
		assert.Equal(t, []string{"task-1"}, resp.Board.Columns[types.StageTodo].TaskIDs)
	})

	t.Run("unknown column", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/drop",
			`{"draggableId":"task-1","source":{"droppableId":"column-1","index":0},"destination":{"droppableId":"nowhere","index":0}}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrInvalidTitle, http.StatusBadRequest},
		{types.ErrUnknownMutation, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", types.ErrNotFound), http.StatusNotFound},
		{types.ErrColumnNotFound, http.StatusNotFound},
		{types.ErrInvalidTransition, http.StatusConflict},
		{types.ErrDuplicateID, http.StatusConflict},
		{types.ErrStoreClosed, http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("opens a listener")
	}
	s, _ := newTestServer(t)
	logger, _ := logtest.NewNullLogger()
	e := New(s, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, e, "127.0.0.1:0") }()

	require.Eventually(t, func() bool { return e.ListenerAddr() != nil }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
