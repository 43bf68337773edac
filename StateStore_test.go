package main

import (
	"collabSheet/contracts"
	"collabSheet/mocks"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testGrid = GridConfig{Columns: []string{"A", "B", "C"}, Rows: 3}

func _newTestStateStore(t *testing.T, storage contracts.StateStorage, clock contracts.Clock) (*SpreadsheetStateStore, *Metrics) {
	t.Helper()

	metrics := _newTestMetrics()
	store := NewSpreadsheetStateStore(context.Background(), testGrid, storage, clock, time.Second, _newTestLogger(), metrics)
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store, metrics
}

func TestSpreadsheetStateStore_Hydration(t *testing.T) {
	t.Run("empty_storage", func(t *testing.T) {
		store, _ := _newTestStateStore(t, NewMemoryStateStorage(NewCellStateSerializer()), _fixedClock(1))

		snapshot := store.Snapshot()
		assert.Len(t, snapshot, 9)
		for _, cell := range snapshot {
			assert.Equal(t, "", cell.RawInput)
			assert.Equal(t, contracts.TextValue(""), cell.ComputedValue)
			assert.Zero(t, cell.Timestamp)
		}
	})

	t.Run("persisted_cells_overlay_grid", func(t *testing.T) {
		storage := mocks.NewStateStorage(t)
		storage.On("Load", mock.Anything).Return(contracts.SpreadsheetState{
			"A1": _cell("5", contracts.TextValue("5"), 100),
		}, nil)

		store, _ := _newTestStateStore(t, storage, _fixedClock(1))

		snapshot := store.Snapshot()
		assert.Len(t, snapshot, 9)
		assert.Equal(t, _cell("5", contracts.TextValue("5"), 100), snapshot["A1"])
		assert.Equal(t, "", snapshot["B2"].RawInput)
	})

	t.Run("load_failure_keeps_empty_grid", func(t *testing.T) {
		storage := mocks.NewStateStorage(t)
		storage.On("Load", mock.Anything).Return(nil, errors.New("disk is gone"))

		store, _ := _newTestStateStore(t, storage, _fixedClock(1))

		snapshot := store.Snapshot()
		assert.Len(t, snapshot, 9)
		assert.Zero(t, snapshot["A1"].Timestamp)
	})
}

func TestSpreadsheetStateStore_Update(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T, clock contracts.Clock) (*SpreadsheetStateStore, *Metrics) {
		return _newTestStateStore(t, NewMemoryStateStorage(NewCellStateSerializer()), clock)
	}

	t.Run("local_update_stamps_clock", func(t *testing.T) {
		store, metrics := newStore(t, _fixedClock(500))

		state, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A1", RawInput: "=1+2", ComputedValue: contracts.NumberValue(3),
			Timestamp: 42, Source: contracts.UpdateSourceLocal,
		})

		assert.NoError(t, err)
		assert.Equal(t, _cell("=1+2", contracts.NumberValue(3), 500), state["A1"])
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StateUpdates.WithLabelValues("local", UpdateOutcomeApplied)))
	})

	t.Run("successive_local_updates_are_ordered", func(t *testing.T) {
		store, _ := newStore(t, _steppingClock(100))

		first, _ := store.Update(ctx, contracts.UpdateIntent{CellId: "A1", RawInput: "1", Source: contracts.UpdateSourceLocal})
		second, _ := store.Update(ctx, contracts.UpdateIntent{CellId: "A1", RawInput: "2", Source: contracts.UpdateSourceLocal})

		assert.Equal(t, int64(100), first["A1"].Timestamp)
		assert.Equal(t, int64(101), second["A1"].Timestamp)
		assert.Equal(t, "2", second["A1"].RawInput)
	})

	t.Run("local_update_always_wins", func(t *testing.T) {
		store, _ := newStore(t, _fixedClock(10))

		_, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A1", RawInput: "remote", ComputedValue: contracts.TextValue("remote"),
			Timestamp: 9999, Source: contracts.UpdateSourceRemote,
		})
		assert.NoError(t, err)

		state, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A1", RawInput: "local", ComputedValue: contracts.TextValue("local"),
			Source: contracts.UpdateSourceLocal,
		})

		assert.NoError(t, err)
		assert.Equal(t, "local", state["A1"].RawInput)
		assert.Equal(t, int64(10), state["A1"].Timestamp)
	})

	t.Run("remote_update_keeps_message_timestamp", func(t *testing.T) {
		store, _ := newStore(t, _fixedClock(1))

		state, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A2", RawInput: "7", ComputedValue: contracts.TextValue("7"),
			Timestamp: 1234, Source: contracts.UpdateSourceRemote,
		})

		assert.NoError(t, err)
		assert.Equal(t, _cell("7", contracts.TextValue("7"), 1234), state["A2"])
	})

	t.Run("remote_update_with_zero_timestamp_is_stale", func(t *testing.T) {
		store, metrics := newStore(t, _fixedClock(777))

		_, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A1", RawInput: "newer", ComputedValue: contracts.TextValue("newer"),
			Timestamp: 2000000000, Source: contracts.UpdateSourceRemote,
		})
		assert.NoError(t, err)

		state, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A1", RawInput: "older", ComputedValue: contracts.TextValue("older"),
			Timestamp: 0, Source: contracts.UpdateSourceRemote,
		})

		assert.NoError(t, err)
		assert.Equal(t, _cell("newer", contracts.TextValue("newer"), 2000000000), state["A1"])
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StateUpdates.WithLabelValues("remote", UpdateOutcomeStale)))
	})

	t.Run("remote_update_on_unknown_cell", func(t *testing.T) {
		store, _ := newStore(t, _fixedClock(1))

		state, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "Z99", RawInput: "far", ComputedValue: contracts.TextValue("far"),
			Timestamp: 5, Source: contracts.UpdateSourceRemote,
		})

		assert.NoError(t, err)
		assert.Equal(t, "far", state["Z99"].RawInput)
	})

	t.Run("stale_remote_updates_are_discarded", func(t *testing.T) {
		store, metrics := newStore(t, _fixedClock(2000000000))

		_, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A1", RawInput: "newer", ComputedValue: contracts.TextValue("newer"),
			Source: contracts.UpdateSourceLocal,
		})
		assert.NoError(t, err)

		for _, timestamp := range []int64{1000000000, 2000000000} {
			state, err := store.Update(ctx, contracts.UpdateIntent{
				CellId: "A1", RawInput: "older", ComputedValue: contracts.TextValue("older"),
				Timestamp: timestamp, Source: contracts.UpdateSourceRemote,
			})

			assert.NoError(t, err)
			assert.Equal(t, _cell("newer", contracts.TextValue("newer"), 2000000000), state["A1"])
		}

		assert.Equal(t, float64(2), testutil.ToFloat64(metrics.StateUpdates.WithLabelValues("remote", UpdateOutcomeStale)))
	})

	t.Run("newer_remote_update_replaces", func(t *testing.T) {
		store, _ := newStore(t, _fixedClock(1000))

		_, _ = store.Update(ctx, contracts.UpdateIntent{
			CellId: "C3", RawInput: "first", ComputedValue: contracts.TextValue("first"),
			Source: contracts.UpdateSourceLocal,
		})

		state, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "C3", RawInput: "second", ComputedValue: contracts.TextValue("second"),
			Timestamp: 1001, Source: contracts.UpdateSourceRemote,
		})

		assert.NoError(t, err)
		assert.Equal(t, _cell("second", contracts.TextValue("second"), 1001), state["C3"])
	})

	t.Run("unknown_source", func(t *testing.T) {
		store, _ := newStore(t, _fixedClock(1))

		state, err := store.Update(ctx, contracts.UpdateIntent{CellId: "A1", RawInput: "x", Source: "sideways"})

		assert.ErrorIs(t, err, contracts.UnknownUpdateSourceError)
		assert.Equal(t, "", state["A1"].RawInput)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		store, _ := newStore(t, _fixedClock(1))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.Update(cancelled, contracts.UpdateIntent{CellId: "A1", Source: contracts.UpdateSourceLocal})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("returned_state_is_a_copy", func(t *testing.T) {
		store, _ := newStore(t, _fixedClock(1))

		state, _ := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A1", RawInput: "1", ComputedValue: contracts.TextValue("1"), Source: contracts.UpdateSourceLocal,
		})
		state["A1"] = _cell("mutated", contracts.TextValue("mutated"), 0)

		cell, ok := store.Cell("A1")
		assert.True(t, ok)
		assert.Equal(t, "1", cell.RawInput)
	})
}

func TestSpreadsheetStateStore_Persist(t *testing.T) {
	ctx := context.Background()

	t.Run("committed_state_reaches_storage", func(t *testing.T) {
		storage := NewMemoryStateStorage(NewCellStateSerializer())
		store, _ := _newTestStateStore(t, storage, _fixedClock(321))

		_, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "B2", RawInput: "=2*2", ComputedValue: contracts.NumberValue(4), Source: contracts.UpdateSourceLocal,
		})
		assert.NoError(t, err)
		assert.NoError(t, store.Close())

		persisted, err := storage.Load(ctx)
		assert.NoError(t, err)
		assert.Equal(t, _cell("=2*2", contracts.NumberValue(4), 321), persisted["B2"])
		assert.Len(t, persisted, 9)
	})

	t.Run("save_failure_keeps_state", func(t *testing.T) {
		storage := mocks.NewStateStorage(t)
		storage.On("Load", mock.Anything).Return(nil, nil)
		storage.On("Save", mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))

		store, metrics := _newTestStateStore(t, storage, _fixedClock(1))

		state, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A1", RawInput: "kept", ComputedValue: contracts.TextValue("kept"), Source: contracts.UpdateSourceLocal,
		})
		assert.NoError(t, err)
		assert.NoError(t, store.Close())

		assert.Equal(t, "kept", state["A1"].RawInput)
		assert.Equal(t, "kept", store.Snapshot()["A1"].RawInput)
		assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.PersistFailures), float64(1))
	})

	t.Run("stale_update_is_not_persisted", func(t *testing.T) {
		storage := mocks.NewStateStorage(t)
		storage.On("Load", mock.Anything).Return(contracts.SpreadsheetState{
			"A1": _cell("newer", contracts.TextValue("newer"), 50),
		}, nil)

		store, _ := _newTestStateStore(t, storage, _fixedClock(1))

		_, err := store.Update(ctx, contracts.UpdateIntent{
			CellId: "A1", RawInput: "older", ComputedValue: contracts.TextValue("older"),
			Timestamp: 40, Source: contracts.UpdateSourceRemote,
		})
		assert.NoError(t, err)
		assert.NoError(t, store.Close())

		storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestIsStaleWrite(t *testing.T) {
	assert.False(t, IsStaleWrite(_cell("", contracts.TextValue(""), 0), 0))
	assert.False(t, IsStaleWrite(_cell("", contracts.TextValue(""), 0), 5))
	assert.False(t, IsStaleWrite(_cell("", contracts.TextValue(""), 5), 6))
	assert.True(t, IsStaleWrite(_cell("", contracts.TextValue(""), 5), 5))
	assert.True(t, IsStaleWrite(_cell("", contracts.TextValue(""), 5), 4))
}

func TestMergeSnapshots(t *testing.T) {
	persisted := contracts.SpreadsheetState{
		"A1": _cell("persisted newer", contracts.TextValue("persisted newer"), 20),
		"B1": _cell("persisted older", contracts.TextValue("persisted older"), 10),
		"C1": _cell("persisted only", contracts.TextValue("persisted only"), 5),
		"D1": _cell("tie persisted", contracts.TextValue("tie persisted"), 7),
	}
	incoming := contracts.SpreadsheetState{
		"A1": _cell("incoming older", contracts.TextValue("incoming older"), 15),
		"B1": _cell("incoming newer", contracts.TextValue("incoming newer"), 11),
		"D1": _cell("tie incoming", contracts.TextValue("tie incoming"), 7),
		"E1": _cell("incoming only", contracts.TextValue("incoming only"), 1),
	}

	merged := MergeSnapshots(persisted, incoming)

	assert.Len(t, merged, 5)
	assert.Equal(t, "persisted newer", merged["A1"].RawInput)
	assert.Equal(t, "incoming newer", merged["B1"].RawInput)
	assert.Equal(t, "persisted only", merged["C1"].RawInput)
	assert.Equal(t, "tie incoming", merged["D1"].RawInput)
	assert.Equal(t, "incoming only", merged["E1"].RawInput)

	assert.Equal(t, incoming, MergeSnapshots(nil, incoming))
}
