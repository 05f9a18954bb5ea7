// Package store owns the live board. It applies mutations one at a time,
// answers reads from the current snapshot and writes the board to a blob
// store according to a sync strategy.
//
// Persistence is best effort: a failed load falls back to the initial board
// and a failed save is logged. Neither ever changes the outcome of a
// mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/kanban/internal/board"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Options configures a Store. Zero values select the defaults from
// pkg/types.
type Options struct {
	Key           string
	Pipeline      types.Pipeline
	SyncStrategy  string
	BatchSize     int
	BatchInterval time.Duration
	Logger        log.FieldLogger

	// NewID generates IDs for AddTask mutations that carry none.
	NewID func() string
}

// OptionsFromConfig maps the persistence fields of cfg onto Options.
func OptionsFromConfig(cfg types.Config, logger log.FieldLogger) Options {
	return Options{
		Key:           cfg.GetKey(),
		Pipeline:      cfg.GetPipeline(),
		SyncStrategy:  cfg.GetSyncStrategy(),
		BatchSize:     cfg.GetBatchSize(),
		BatchInterval: cfg.GetBatchInterval(),
		Logger:        logger,
	}
}

// Store is safe for concurrent use. Mutations are serialised; reads see the
// board as of the last applied mutation.
type Store struct {
	mu       sync.RWMutex // protects board, seq and closed
	board    types.Board
	seq      uint64 // bumped on every applied mutation
	closed   bool
	pipeline types.Pipeline

	blob  types.BlobStore
	key   string
	log   log.FieldLogger
	newID func() string

	syncStrategy  string
	batchSize     int
	batchInterval time.Duration
	batchMu       sync.Mutex // protects pending and batchTimer
	pending       int
	batchTimer    *time.Timer

	saveMu   sync.Mutex // serialises writes to the blob store
	savedSeq uint64
}

// Open loads the board stored under opts.Key, or starts from the initial
// board of the pipeline when nothing usable is stored. Only an invalid
// pipeline is an error.
func Open(ctx context.Context, blob types.BlobStore, opts Options) (*Store, error) {
	p := opts.Pipeline
	if len(p.Stages) == 0 {
		p = types.DefaultPipeline()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		pipeline:      p,
		blob:          blob,
		key:           opts.Key,
		log:           opts.Logger,
		newID:         opts.NewID,
		syncStrategy:  opts.SyncStrategy,
		batchSize:     opts.BatchSize,
		batchInterval: opts.BatchInterval,
	}
	if s.key == "" {
		s.key = types.DefaultKey
	}
	if s.log == nil {
		s.log = log.StandardLogger()
	}
	s.log = s.log.WithField("key", s.key)
	if s.newID == nil {
		s.newID = board.NewTaskID
	}
	if s.syncStrategy == "" {
		s.syncStrategy = types.SyncImmediate
	}
	if s.batchSize <= 0 {
		s.batchSize = types.DefaultBatchSize
	}
	if s.batchInterval <= 0 {
		s.batchInterval = types.DefaultBatchInterval * time.Second
	}

	s.board = s.load(ctx)
	if s.syncStrategy == types.SyncBatch {
		s.startBatchTimer()
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) types.Board {
	data, err := s.blob.Get(ctx, s.key)
	if errors.Is(err, types.ErrBlobNotFound) {
		s.log.Debug("no saved board, starting from initial board")
		return s.pipeline.InitialBoard()
	}
	if err != nil {
		s.log.WithError(err).Warn("loading board failed, starting from initial board")
		return s.pipeline.InitialBoard()
	}

	var b types.Board
	if err := json.Unmarshal(data, &b); err != nil {
		s.log.WithError(err).Warn("saved board is not valid JSON, starting from initial board")
		return s.pipeline.InitialBoard()
	}
	if b.Tasks == nil {
		b.Tasks = make(map[string]types.Task)
	}
	if err := board.Validate(b, s.pipeline); err != nil {
		s.log.WithError(err).Warn("saved board does not fit pipeline, starting from initial board")
		return s.pipeline.InitialBoard()
	}
	s.log.WithField("tasks", b.Len()).Debug("loaded board")
	return b
}

// Dispatch applies m and returns the resulting board. A rejected mutation
// returns the unchanged board together with the rejection; persistence
// failures are logged and never returned.
func (s *Store) Dispatch(ctx context.Context, m board.Mutation) (types.Board, error) {
	if add, ok := m.(board.AddTask); ok && add.ID == "" {
		add.ID = s.newID()
		m = add
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return types.Board{}, types.ErrStoreClosed
	}
	next, err := m.Apply(s.board, s.pipeline)
	if err != nil {
		prev := s.board.Clone()
		s.mu.Unlock()
		s.log.WithField("mutation", m.Name()).WithError(err).Debug("mutation rejected")
		return prev, err
	}
	s.board = next
	s.seq++
	s.mu.Unlock()

	s.log.WithField("mutation", m.Name()).Debug("mutation applied")
	s.afterApply(ctx)
	return next.Clone(), nil
}

func (s *Store) afterApply(ctx context.Context) {
	switch s.syncStrategy {
	case types.SyncOnClose:
		return
	case types.SyncBatch:
		s.batchMu.Lock()
		s.pending++
		full := s.pending >= s.batchSize
		s.batchMu.Unlock()
		if !full {
			return
		}
	}
	s.save(ctx)
}

// save writes the board and logs instead of returning failures.
func (s *Store) save(ctx context.Context) {
	if err := s.flush(ctx); err != nil {
		s.log.WithError(err).Warn("saving board failed")
	}
}

// Flush writes the current board if it changed since the last successful
// write.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return types.ErrStoreClosed
	}
	return s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	b, seq := s.board, s.seq
	s.mu.RUnlock()
	if seq == s.savedSeq {
		return nil
	}

	s.batchMu.Lock()
	s.pending = 0
	s.batchMu.Unlock()

	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	if err := s.blob.Put(ctx, s.key, data); err != nil {
		return err
	}
	s.savedSeq = seq
	return nil
}

func (s *Store) startBatchTimer() {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	s.batchTimer = time.AfterFunc(s.batchInterval, func() {
		s.mu.RLock()
		closed := s.closed
		s.mu.RUnlock()
		if closed {
			return
		}
		s.save(context.Background())

		s.batchMu.Lock()
		if s.batchTimer != nil {
			s.batchTimer.Reset(s.batchInterval)
		}
		s.batchMu.Unlock()
	})
}

func (s *Store) stopBatchTimer() {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	if s.batchTimer != nil {
		s.batchTimer.Stop()
		s.batchTimer = nil
	}
}

// Close writes any unsaved changes and closes the blob store. Calling Close
// again is a no-op.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stopBatchTimer()
	flushErr := s.flush(ctx)
	if flushErr != nil {
		s.log.WithError(flushErr).Warn("saving board on close failed")
	}
	return errors.Join(flushErr, s.blob.Close())
}

// Pipeline returns the stage pipeline the board is validated against.
func (s *Store) Pipeline() types.Pipeline {
	return s.pipeline
}

// Snapshot returns a copy of the current board.
func (s *Store) Snapshot() types.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Clone()
}

// Task returns a task by ID.
func (s *Store) Task(id string) (types.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.board.Tasks[id]
	return t, ok
}

// TasksOf returns the tasks of a column in display order.
func (s *Store) TasksOf(columnID string) ([]types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return board.TasksOf(s.board, columnID)
}

// Search returns the tasks whose title or description contains term.
func (s *Store) Search(term string) []types.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return board.Search(s.board, term)
}

// ColumnOf returns the column currently holding taskID.
func (s *Store) ColumnOf(taskID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return board.ColumnOf(s.board, taskID)
}

// View returns the board's columns filtered by term.
func (s *Store) View(term string) []board.ColumnView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return board.View(s.board, s.pipeline, term)
}
