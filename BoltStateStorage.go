package main

import (
	"collabSheet/contracts"
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var stateBucketName = []byte("state")

// BoltStateStorage keeps the snapshot under the document id in the `state` bucket.
// The database is opened per operation so several views can share one file; the file
// lock serializes them, bounded by timeout.
type BoltStateStorage struct {
	path        string
	documentKey []byte
	serializer  contracts.CellSerializer
	timeout     time.Duration
}

func NewBoltStateStorage(path string, documentId string, serializer contracts.CellSerializer, timeout time.Duration) *BoltStateStorage {
	return &BoltStateStorage{
		path:        path,
		documentKey: []byte(documentId),
		serializer:  serializer,
		timeout:     timeout,
	}
}

func (s *BoltStateStorage) Load(ctx context.Context) (state contracts.SpreadsheetState, err error) {
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	err = s.withDb(func(db *bbolt.DB) error {
		return db.View(func(tx *bbolt.Tx) (err error) {
			state, err = s.read(tx)
			return
		})
	})

	return
}

// Save merges state into the persisted snapshot cell by cell, so a concurrent saver's newer cells survive
func (s *BoltStateStorage) Save(ctx context.Context, state contracts.SpreadsheetState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.withDb(func(db *bbolt.DB) error {
		return db.Update(func(tx *bbolt.Tx) error {
			bucket, err := tx.CreateBucketIfNotExists(stateBucketName)
			if err != nil {
				return err
			}

			persisted, err := s.read(tx)
			if err != nil {
				// unreadable snapshot is replaced by the incoming one
				persisted = nil
			}

			data, err := s.serializer.MarshalState(MergeSnapshots(persisted, state))
			if err != nil {
				return err
			}

			return bucket.Put(s.documentKey, data)
		})
	})
}

func (s *BoltStateStorage) Close() error {
	return nil
}

func (s *BoltStateStorage) read(tx *bbolt.Tx) (contracts.SpreadsheetState, error) {
	bucket := tx.Bucket(stateBucketName)
	if bucket == nil {
		return nil, nil
	}

	value := bucket.Get(s.documentKey)
	if value == nil {
		return nil, nil
	}

	// bbolt values are only valid inside the transaction
	return s.serializer.UnmarshalState(append([]byte(nil), value...))
}

func (s *BoltStateStorage) withDb(fn func(db *bbolt.DB) error) (err error) {
	db, err := bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: s.timeout})
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}

	defer func() {
		if closeErr := db.Close(); err == nil {
			err = closeErr
		}
	}()

	return fn(db)
}
