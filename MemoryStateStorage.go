package main

import (
	"collabSheet/contracts"
	"context"
	"sync"
)

// MemoryStateStorage keeps the serialized snapshot in memory
type MemoryStateStorage struct {
	mu         sync.Mutex
	data       []byte
	serializer contracts.CellSerializer
}

func NewMemoryStateStorage(serializer contracts.CellSerializer) *MemoryStateStorage {
	return &MemoryStateStorage{serializer: serializer}
}

func (s *MemoryStateStorage) Load(ctx context.Context) (contracts.SpreadsheetState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, nil
	}

	return s.serializer.UnmarshalState(s.data)
}

func (s *MemoryStateStorage) Save(ctx context.Context, state contracts.SpreadsheetState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var persisted contracts.SpreadsheetState
	if s.data != nil {
		persisted, _ = s.serializer.UnmarshalState(s.data)
	}

	data, err := s.serializer.MarshalState(MergeSnapshots(persisted, state))
	if err != nil {
		return err
	}

	s.data = data
	return nil
}

func (s *MemoryStateStorage) Close() error {
	return nil
}
