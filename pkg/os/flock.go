package os

import (
	"errors"
	"os"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when the lock is held by another process.
var ErrLocked = errors.New("file is locked by another process")

type Flock struct {
	f *flock.Flock
}

// NewFileLock makes an exclusive lock file at the path,
// the default is vexport.lock in the temp directory.
func NewFileLock(path string) (*Flock, error) {
	if path == "" {
		path = os.TempDir() + string(os.PathSeparator) + "vexport.lock"
	}

	path, err := OutputPath(path, false)
	if err != nil {
		return nil, err
	}
	return &Flock{f: flock.New(path)}, nil
}

func (f *Flock) Lock() error { return f.f.Lock() }

// TryLock takes the lock without waiting or returns ErrLocked.
func (f *Flock) TryLock() error {
	ok, err := f.f.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

func (f *Flock) Path() string { return f.f.Path() }

// Unlock releases the lock, it is safe to call more than once and
// from several goroutines. The lock file stays, removing it would let
// a process waiting on the old file and a new one lock at the same time.
func (f *Flock) Unlock() error { return f.f.Unlock() }
