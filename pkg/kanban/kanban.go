// Package kanban is the entry point for embedding a board: it wires a
// Config to a blob store and opens the store on top of it.
package kanban

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/kanban/internal/blob"
	"github.com/mesh-intelligence/kanban/internal/store"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Version is the release of the kanban module.
const Version = "0.3.0"

// Open validates cfg, connects the configured blob store and loads the
// board from it. The returned store owns the blob store; Close it when done.
func Open(ctx context.Context, cfg types.Config, logger log.FieldLogger) (*store.Store, error) {
	bs, err := blob.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	s, err := store.Open(ctx, bs, store.OptionsFromConfig(cfg, logger.WithField("backend", cfg.Backend)))
	if err != nil {
		bs.Close()
		return nil, err
	}
	return s, nil
}

// Init writes the initial board for cfg's pipeline unless a board is already
// stored. It reports whether a new board was written.
func Init(ctx context.Context, cfg types.Config) (bool, error) {
	bs, err := blob.Open(ctx, cfg)
	if err != nil {
		return false, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	defer bs.Close()

	_, err = bs.Get(ctx, cfg.GetKey())
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, types.ErrBlobNotFound) {
		return false, err
	}
	data, err := json.Marshal(cfg.GetPipeline().InitialBoard())
	if err != nil {
		return false, err
	}
	if err := bs.Put(ctx, cfg.GetKey(), data); err != nil {
		return false, err
	}
	return true, nil
}
