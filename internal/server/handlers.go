package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/kanban/internal/board"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

// maxBody bounds command and drop request bodies.
const maxBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	// Index is the position of the failing command in a batch.
	Index *int `json:"index,omitempty"`
}

// mutationResponse reports whether anything changed and the board after
// the request.
type mutationResponse struct {
	Applied bool        `json:"applied"`
	Board   types.Board `json:"board"`
}

// statusFor maps a mutation outcome onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidTitle), errors.Is(err, types.ErrUnknownMutation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrColumnNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidTransition), errors.Is(err, types.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, types.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getBoard(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, b.Snapshot())
	}
}

func getColumnTasks(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks, err := b.TasksOf(c.Param("id"))
		if err != nil {
			return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, tasks)
	}
}

func searchTasks(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks := b.Search(c.QueryParam("q"))
		if tasks == nil {
			tasks = []types.Task{}
		}
		return c.JSON(http.StatusOK, tasks)
	}
}

func getView(b Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, b.View(c.QueryParam("q")))
	}
}

// decodeCommands accepts a single envelope or an array of them.
func decodeCommands(body []byte) ([]board.Command, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var cmds []board.Command
		err := json.Unmarshal(body, &cmds)
		return cmds, err
	}
	var cmd board.Command
	if err := json.Unmarshal(body, &cmd); err != nil {
		return nil, err
	}
	return []board.Command{cmd}, nil
}

// postCommands applies commands in order and stops at the first one that is
// rejected. Commands before it stay applied. Noops are skipped.
func postCommands(b Board, logger log.FieldLogger) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBody))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "read body"})
		}
		cmds, err := decodeCommands(body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json"})
		}
		if len(cmds) == 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "no commands"})
		}

		ctx := c.Request().Context()
		resp := mutationResponse{Board: b.Snapshot()}
		for i, cmd := range cmds {
			m, err := cmd.Mutation()
			if err != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Index: &i})
			}
			next, err := b.Dispatch(ctx, m)
			if errors.Is(err, types.ErrNoop) {
				continue
			}
			if err != nil {
				logger.WithFields(log.Fields{"mutation": m.Name(), "index": i}).WithError(err).Debug("command rejected")
				return c.JSON(statusFor(err), errorResponse{Error: err.Error(), Index: &i})
			}
			resp.Applied = true
			resp.Board = next
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// postDrop turns a drag-and-drop result into a move. Drops outside a column
// or back onto the same slot are ignored.
func postDrop(b Board, logger log.FieldLogger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var drop board.DropResult
		if err := json.NewDecoder(io.LimitReader(c.Request().Body, maxBody)).Decode(&drop); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json"})
		}
		m, ok := drop.ToMutation()
		if !ok {
			return c.JSON(http.StatusOK, mutationResponse{Board: b.Snapshot()})
		}
		next, err := b.Dispatch(c.Request().Context(), m)
		if errors.Is(err, types.ErrNoop) {
			return c.JSON(http.StatusOK, mutationResponse{Board: next})
		}
		if err != nil {
			logger.WithField("task_id", m.TaskID).WithError(err).Debug("drop rejected")
			return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, mutationResponse{Applied: true, Board: next})
	}
}
