package contracts

import (
	"context"
	"errors"
)

type UpdateSource string

const (
	UpdateSourceLocal  UpdateSource = "local"
	UpdateSourceRemote UpdateSource = "remote"
)

var UnknownUpdateSourceError = errors.New("unknown update source")

// UpdateIntent is one change flowing into the StateStore.
// Timestamp is ignored for local intents; remote intents keep it as received.
type UpdateIntent struct {
	CellId        string
	RawInput      string
	ComputedValue CellValue
	Timestamp     int64
	Source        UpdateSource
}

// Clock returns Unix milliseconds
type Clock func() int64

type StateStore interface {
	// Update applies the intent and returns the resulting state. Concurrent calls are serialized.
	Update(ctx context.Context, intent UpdateIntent) (SpreadsheetState, error)
	Snapshot() SpreadsheetState
	Cell(cellId string) (CellData, bool)
}

// StateStorage persists the whole spreadsheet state as one blob.
// Load returns a nil state and nil error when nothing was persisted yet.
type StateStorage interface {
	Load(ctx context.Context) (SpreadsheetState, error)
	Save(ctx context.Context, state SpreadsheetState) error
	Close() error
}
