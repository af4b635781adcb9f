package storage

import (
	"os"
	"path/filepath"
	"time"

	"bestvids/internal/fsutil"
)

// WriterLock guards a database file against a second concurrent writer.
type WriterLock struct {
	lock *fsutil.FileLock
}

// LockWriter takes the advisory writer lock for the database at path.
// It fails with ErrLockTimeout when another process holds it past timeout.
func LockWriter(path string, timeout time.Duration) (*WriterLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Op: "lock", Entity: "store", ID: path, Err: err}
	}
	lock := fsutil.NewFileLock(path)
	if err := lock.Lock(timeout); err != nil {
		return nil, &StorageError{Op: "lock", Entity: "store", ID: path, Err: err}
	}
	return &WriterLock{lock: lock}, nil
}

// Unlock releases the writer lock.
func (l *WriterLock) Unlock() error {
	return l.lock.Unlock()
}
