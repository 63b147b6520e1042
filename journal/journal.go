// Package journal persists which documents an extraction run has completed,
// so interrupted batches can be resumed without re-running OCR on finished
// files.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("documents")

// Journal is a bbolt-backed record of completed documents. Entries are keyed
// by path plus file size and modification time, so a changed file is
// processed again.
type Journal struct {
	db *bolt.DB
	mu sync.Mutex
}

func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for journal: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Journal{db: db}, nil
}

func key(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())), nil
}

// IsDone reports whether path, in its current state, was already completed.
func (j *Journal) IsDone(path string) (bool, error) {
	k, err := key(path)
	if err != nil {
		return false, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var done bool
	err = j.db.View(func(tx *bolt.Tx) error {
		done = tx.Bucket(bucketName).Get(k) != nil
		return nil
	})
	return done, err
}

// MarkDone records path as completed.
func (j *Journal) MarkDone(path string) error {
	k, err := key(path)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(k, []byte("1"))
	})
}

// Clear removes all recorded documents.
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
