package main

import "collabSheet/contracts"

func OpenStateStorage(config StorageConfig, documentId string, serializer contracts.CellSerializer) (contracts.StateStorage, error) {
	switch config.Driver {
	case StorageDriverBadger:
		storage, err := OpenBadgerStateStorage(config.Path, documentId, serializer)
		if err != nil {
			return nil, err
		}
		return storage, nil

	case StorageDriverMemory:
		return NewMemoryStateStorage(serializer), nil
	}

	return NewBoltStateStorage(config.Path, documentId, serializer, config.Timeout), nil
}
