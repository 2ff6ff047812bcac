//go:build windows

package scanlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// InstanceLock holds <workDir>/.wk-scan.lock open exclusively.
type InstanceLock struct {
	f    *os.File
	path string
}

func AcquireInstanceLock(workDir string) (*InstanceLock, error) {
	if err := EnsureDir(workDir); err != nil {
		return nil, err
	}
	path := filepath.Join(workDir, LockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return &InstanceLock{f: f, path: path}, nil
}

func (l *InstanceLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	_ = os.Remove(l.path)
	return err
}
