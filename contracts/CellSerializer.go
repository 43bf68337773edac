package contracts

type CellSerializer interface {
	MarshalState(state SpreadsheetState) ([]byte, error)
	UnmarshalState(data []byte) (SpreadsheetState, error)
	MarshalBroadcast(message BroadcastMessage) ([]byte, error)
}
