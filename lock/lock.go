// Package lock keeps two dsplit processes from writing the same output tree.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another dsplit run is already writing to this output directory")

// Lock is a held exclusive lock.
type Lock struct {
	f    *os.File
	path string
}

// PathFor returns the lock file used for an output base directory. It lives
// in the temp dir so the output tree stays free of bookkeeping files.
func PathFor(baseDir string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(baseDir)))
	return filepath.Join(os.TempDir(), "dsplit-"+hex.EncodeToString(sum[:6])+".lock")
}

// Acquire takes the lock for baseDir without blocking.
func Acquire(baseDir string) (*Lock, error) {
	path := PathFor(baseDir)
	// shared temp dir: other users must be able to lock the same base
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, lockError(err, baseDir)
	}

	// PID for whoever inspects a stuck lock
	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Sync()

	return &Lock{f: f, path: path}, nil
}

// lockError maps a failed lock attempt to ErrLocked when another process
// holds the lock, and passes any other failure through.
func lockError(err error, baseDir string) error {
	if isHeldElsewhere(err) {
		return fmt.Errorf("%w (%s)", ErrLocked, baseDir)
	}
	return fmt.Errorf("failed to lock %s: %w", baseDir, err)
}

// Path is the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks and closes the file. Safe on nil and repeated calls.
func (l *Lock) Release() {
	if l == nil || l.f == nil {
		return
	}
	unlockFile(l.f)
	l.f.Close()
	l.f = nil
}
