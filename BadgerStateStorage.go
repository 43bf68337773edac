package main

import (
	"collabSheet/contracts"
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStateStorage keeps one badger handle open, so only one process can use the directory.
// An empty path keeps the data in memory.
type BadgerStateStorage struct {
	db          *badger.DB
	documentKey []byte
	serializer  contracts.CellSerializer
}

func OpenBadgerStateStorage(path string, documentId string, serializer contracts.CellSerializer) (*BadgerStateStorage, error) {
	options := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		options = options.WithInMemory(true)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", path, err)
	}

	return &BadgerStateStorage{
		db:          db,
		documentKey: []byte(documentId),
		serializer:  serializer,
	}, nil
}

func (s *BadgerStateStorage) Load(ctx context.Context) (state contracts.SpreadsheetState, err error) {
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) (err error) {
		state, err = s.read(txn)
		return
	})

	return
}

func (s *BadgerStateStorage) Save(ctx context.Context, state contracts.SpreadsheetState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		persisted, err := s.read(txn)
		if err != nil {
			persisted = nil
		}

		data, err := s.serializer.MarshalState(MergeSnapshots(persisted, state))
		if err != nil {
			return err
		}

		return txn.Set(s.documentKey, data)
	})
}

func (s *BadgerStateStorage) Close() error {
	return s.db.Close()
}

func (s *BadgerStateStorage) read(txn *badger.Txn) (contracts.SpreadsheetState, error) {
	item, err := txn.Get(s.documentKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}

	return s.serializer.UnmarshalState(data)
}
