package output

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// AtomicFile is written under a temporary name next to its destination and
// only renamed into place by Commit, so a failed bake never leaves a
// complete-looking artifact behind.
type AtomicFile struct {
	f    *os.File
	path string
	tmp  string
	done bool
}

func CreateAtomic(path string) (*AtomicFile, error) {
	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	return &AtomicFile{f: f, path: path, tmp: tmp}, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) { return a.f.Write(p) }

func (a *AtomicFile) Path() string { return a.path }

func (a *AtomicFile) Commit() error {
	if a.done {
		return errors.New("atomic file already closed")
	}
	a.done = true
	if err := a.f.Sync(); err != nil {
		a.f.Close()
		os.Remove(a.tmp)
		return err
	}
	if err := a.f.Close(); err != nil {
		os.Remove(a.tmp)
		return err
	}
	if err := os.Rename(a.tmp, a.path); err != nil {
		os.Remove(a.tmp)
		return err
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit, so it can
// be deferred unconditionally.
func (a *AtomicFile) Abort() error {
	if a.done {
		return nil
	}
	a.done = true
	a.f.Close()
	return os.Remove(a.tmp)
}
