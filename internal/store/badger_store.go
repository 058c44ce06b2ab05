package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// checkpointKeyPrefix namespaces checkpoint records in the key space, so
// other record kinds can share the same database later.
var checkpointKeyPrefix = []byte("checkpoint/")

// BadgerStore implements the Store interface on an embedded Badger
// key-value database. Compared to FSStore it keeps every checkpoint in a
// single directory, survives partial writes via the WAL, and makes
// listing cheap even with many jobs.
//
// Thread-safety: Badger transactions provide isolation; methods can be
// called concurrently.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at the given path.
// Badger's own logger is silenced; this package logs through slog like
// everything else.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func checkpointKey(jobID string) []byte {
	return append(append([]byte(nil), checkpointKeyPrefix...), jobID...)
}

// SaveCheckpoint stores a checkpoint in a single write transaction.
func (bs *BadgerStore) SaveCheckpoint(jobID string, checkpoint *Checkpoint) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	if checkpoint == nil {
		return fmt.Errorf("checkpoint cannot be nil")
	}

	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint: %w", err)
	}

	err = bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(checkpointKey(jobID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	slog.Debug("Checkpoint saved", "jobID", jobID, "backend", "badger")
	return nil
}

// LoadCheckpoint retrieves the checkpoint for the given job.
func (bs *BadgerStore) LoadCheckpoint(jobID string) (*Checkpoint, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID cannot be empty")
	}

	var checkpoint Checkpoint
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(checkpointKey(jobID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &checkpoint)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &NotFoundError{JobID: jobID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	slog.Debug("Checkpoint loaded", "jobID", jobID, "backend", "badger")
	return &checkpoint, nil
}

// ListCheckpoints iterates the checkpoint prefix and returns metadata
// for every stored checkpoint. Corrupted records are skipped.
func (bs *BadgerStore) ListCheckpoints() ([]CheckpointInfo, error) {
	var infos []CheckpointInfo

	err := bs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = checkpointKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var checkpoint Checkpoint
				if err := json.Unmarshal(val, &checkpoint); err != nil {
					slog.Warn("Failed to decode checkpoint for listing",
						"key", string(item.Key()), "error", err)
					return nil // Skip corrupted checkpoints
				}
				infos = append(infos, checkpoint.ToInfo())
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate checkpoints: %w", err)
	}

	slog.Debug("Listed checkpoints", "count", len(infos), "backend", "badger")
	return infos, nil
}

// DeleteCheckpoint removes the checkpoint for the given job.
func (bs *BadgerStore) DeleteCheckpoint(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}

	key := checkpointKey(jobID)
	err := bs.db.Update(func(txn *badger.Txn) error {
		// Badger deletes are blind; probe first so missing jobs surface
		// as NotFoundError like the filesystem store.
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return &NotFoundError{JobID: jobID}
	}
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	slog.Debug("Checkpoint deleted", "jobID", jobID, "backend", "badger")
	return nil
}

// Close flushes and closes the underlying database.
func (bs *BadgerStore) Close() error {
	if err := bs.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	return nil
}
