// Package server exposes a board over HTTP with echo. Reads return JSON
// snapshots; writes accept the same command envelopes the board package
// decodes, plus raw drag-and-drop results.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/kanban/internal/board"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Board is the part of the store the handlers use.
type Board interface {
	Dispatch(ctx context.Context, m board.Mutation) (types.Board, error)
	Snapshot() types.Board
	TasksOf(columnID string) ([]types.Task, error)
	Search(term string) []types.Task
	View(term string) []board.ColumnView
}

// New returns an echo instance with recovery, request logging and all
// routes registered.
func New(b Board, logger log.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))
	Register(e, b, logger)
	return e
}

// Register wires up all API routes on the provided echo instance.
func Register(e *echo.Echo, b Board, logger log.FieldLogger) {
	e.GET("/api/board", getBoard(b))
	e.GET("/api/columns/:id/tasks", getColumnTasks(b))
	e.GET("/api/tasks", searchTasks(b))
	e.GET("/api/view", getView(b))
	e.POST("/api/commands", postCommands(b, logger))
	e.POST("/api/drop", postDrop(b, logger))
	e.GET("/healthz", healthz())
}

// Serve runs e on addr until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
