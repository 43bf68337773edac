package main

import (
	"collabSheet/contracts"
	"errors"
	"fmt"

	json "github.com/bytedance/sonic"
)

var SerializerError = errors.New("invalid serialized data")

// CellStateSerializer encodes snapshots and broadcast messages as JSON
type CellStateSerializer struct {
}

func NewCellStateSerializer() *CellStateSerializer {
	return &CellStateSerializer{}
}

func (s *CellStateSerializer) MarshalState(state contracts.SpreadsheetState) ([]byte, error) {
	return json.Marshal(state)
}

func (s *CellStateSerializer) UnmarshalState(data []byte) (contracts.SpreadsheetState, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty snapshot", SerializerError)
	}

	state := contracts.SpreadsheetState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %s", SerializerError, err.Error())
	}

	return state, nil
}

func (s *CellStateSerializer) MarshalBroadcast(message contracts.BroadcastMessage) ([]byte, error) {
	return json.Marshal(message)
}
