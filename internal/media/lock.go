package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const exportLockName = ".shorts-export.lock"

// ErrDirLocked is returned when another export holds the directory.
var ErrDirLocked = errors.New("export directory is locked")

// DirLock marks a directory as the target of a running export.
type DirLock struct {
	lock *flock.Flock
}

func AcquireDirLock(dir string) (*DirLock, error) {
	target := strings.TrimSpace(dir)
	if target == "" {
		return nil, fmt.Errorf("export directory is required")
	}

	lock := flock.New(filepath.Join(target, exportLockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", target, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDirLocked, target)
	}
	return &DirLock{lock: lock}, nil
}

// Release unlocks and removes the lock file.
func (l *DirLock) Release() error {
	if l == nil || l.lock == nil || !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.lock.Path(), err)
	}
	if err := os.Remove(l.lock.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock %s: %w", l.lock.Path(), err)
	}
	return nil
}
