//go:build !windows

package scanlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// InstanceLock is an exclusive flock on <workDir>/.wk-scan.lock.
type InstanceLock struct {
	f *os.File
}

func AcquireInstanceLock(workDir string) (*InstanceLock, error) {
	if err := EnsureDir(workDir); err != nil {
		return nil, err
	}
	path := filepath.Join(workDir, LockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}
	return &InstanceLock{f: f}, nil
}

func (l *InstanceLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	err := l.f.Close()
	l.f = nil
	return err
}
