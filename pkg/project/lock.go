package project

import (
	"errors"
	"fmt"
	"os"

	devcerrors "github.com/devc/devc/pkg/errors"
	"golang.org/x/sys/unix"
)

// lockMode is unix.LOCK_SH or unix.LOCK_EX.
type lockMode int

const (
	lockShared    lockMode = unix.LOCK_SH
	lockExclusive lockMode = unix.LOCK_EX
)

func (m lockMode) String() string {
	if m == lockExclusive {
		return "write"
	}
	return "read"
}

// lock takes an advisory lock on the project's lock file without waiting.
// A held lock fails with a lock contention error.
func (s *Store) lock(mode lockMode) (func(), error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), int(mode)|unix.LOCK_NB); err != nil {
		f.Close()

		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, devcerrors.New(devcerrors.KindLockContention,
				"unable to acquire %s lock, another devc command is running for this project (lock file: %s)",
				mode, s.lockPath)
		}

		return nil, fmt.Errorf("acquire file lock: %w", err)
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
