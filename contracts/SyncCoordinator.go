package contracts

import "context"

type SyncCoordinator interface {
	Edit(ctx context.Context, cellId string, rawInput string) error
	Snapshot() SpreadsheetState
	Cell(cellId string) (CellData, bool)
}
