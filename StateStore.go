package main

import (
	"collabSheet/contracts"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SpreadsheetStateStore owns the state of one view. Updates are serialized;
// every committed transition is handed to the persister, which saves the
// latest snapshot in the background.
type SpreadsheetStateStore struct {
	mu    sync.Mutex
	state contracts.SpreadsheetState

	storage contracts.StateStorage
	clock   contracts.Clock
	timeout time.Duration
	logger  *slog.Logger
	metrics *Metrics

	persistMu     sync.Mutex
	pendingSave   contracts.SpreadsheetState
	persistSignal chan struct{}
	closing       chan struct{}
	done          chan struct{}
	closeOnce     sync.Once
}

func NewSpreadsheetStateStore(
	ctx context.Context, grid GridConfig, storage contracts.StateStorage, clock contracts.Clock,
	timeout time.Duration, logger *slog.Logger, metrics *Metrics,
) *SpreadsheetStateStore {
	store := &SpreadsheetStateStore{
		state:         NewInitialState(grid),
		storage:       storage,
		clock:         clock,
		timeout:       timeout,
		logger:        logger,
		metrics:       metrics,
		persistSignal: make(chan struct{}, 1),
		closing:       make(chan struct{}),
		done:          make(chan struct{}),
	}

	store.hydrate(ctx)
	go store.runPersister()

	return store
}

// hydrate overlays the persisted snapshot on the empty grid. A failed load keeps the empty grid.
func (s *SpreadsheetStateStore) hydrate(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	persisted, err := s.storage.Load(loadCtx)
	if err != nil {
		s.logger.Error("failed to load state from storage", "error", err)
		return
	}

	for cellId, cell := range persisted {
		s.state[cellId] = cell
	}

	s.logger.Info("state hydrated", "persistedCells", len(persisted))
}

func (s *SpreadsheetStateStore) Update(ctx context.Context, intent contracts.UpdateIntent) (contracts.SpreadsheetState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.apply(intent)
	if err != nil {
		return s.state.Clone(), err
	}

	if changed {
		s.schedulePersist(s.state.Clone())
	}

	return s.state.Clone(), nil
}

func (s *SpreadsheetStateStore) apply(intent contracts.UpdateIntent) (bool, error) {
	switch intent.Source {
	case contracts.UpdateSourceLocal:
		// local edits always win: they are the freshest first-hand input
		s.state[intent.CellId] = contracts.CellData{
			RawInput:      intent.RawInput,
			ComputedValue: intent.ComputedValue,
			Timestamp:     s.clock(),
		}

	case contracts.UpdateSourceRemote:
		timestamp := intent.Timestamp
		if existing, ok := s.state[intent.CellId]; ok && IsStaleWrite(existing, timestamp) {
			s.logger.Debug("stale remote update discarded",
				"cellId", intent.CellId, "timestamp", timestamp, "existingTimestamp", existing.Timestamp)
			s.metrics.StateUpdates.WithLabelValues(string(intent.Source), UpdateOutcomeStale).Inc()
			return false, nil
		}

		s.state[intent.CellId] = contracts.CellData{
			RawInput:      intent.RawInput,
			ComputedValue: intent.ComputedValue,
			Timestamp:     timestamp,
		}

	default:
		return false, fmt.Errorf("%w: %q", contracts.UnknownUpdateSourceError, intent.Source)
	}

	s.metrics.StateUpdates.WithLabelValues(string(intent.Source), UpdateOutcomeApplied).Inc()
	return true, nil
}

func (s *SpreadsheetStateStore) Snapshot() contracts.SpreadsheetState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

func (s *SpreadsheetStateStore) Cell(cellId string) (contracts.CellData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.state[cellId]
	return cell, ok
}

// Close saves whatever is still pending and stops the persister
func (s *SpreadsheetStateStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.closing)
	})
	<-s.done

	return nil
}

func (s *SpreadsheetStateStore) schedulePersist(state contracts.SpreadsheetState) {
	s.persistMu.Lock()
	s.pendingSave = state
	s.persistMu.Unlock()

	select {
	case s.persistSignal <- struct{}{}:
	default:
	}
}

func (s *SpreadsheetStateStore) runPersister() {
	defer close(s.done)

	for {
		select {
		case <-s.persistSignal:
			s.persistPending()
		case <-s.closing:
			s.persistPending()
			return
		}
	}
}

func (s *SpreadsheetStateStore) persistPending() {
	s.persistMu.Lock()
	state := s.pendingSave
	s.pendingSave = nil
	s.persistMu.Unlock()

	if state == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.storage.Save(ctx, state); err != nil {
		s.logger.Error("failed to save state to storage", "error", err)
		s.metrics.PersistFailures.Inc()
	}
}

// IsStaleWrite reports whether a write stamped with timestamp loses against existing.
// Ties favor the existing record; a record that was never written never wins.
func IsStaleWrite(existing contracts.CellData, timestamp int64) bool {
	return existing.Timestamp != 0 && existing.Timestamp >= timestamp
}

// MergeSnapshots merges incoming into persisted cell by cell. A persisted cell survives
// only when it is strictly newer than the incoming one.
func MergeSnapshots(persisted contracts.SpreadsheetState, incoming contracts.SpreadsheetState) contracts.SpreadsheetState {
	merged := make(contracts.SpreadsheetState, max(len(persisted), len(incoming)))
	for cellId, cell := range persisted {
		merged[cellId] = cell
	}

	for cellId, cell := range incoming {
		if existing, ok := merged[cellId]; ok && existing.Timestamp > cell.Timestamp {
			continue
		}
		merged[cellId] = cell
	}

	return merged
}
