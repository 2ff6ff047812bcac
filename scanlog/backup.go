package scanlog

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/disk"
)

// BackupDirName is created under the destination chosen by the user.
const BackupDirName = "wk-scan"

type BackupResult struct {
	Path  string `json:"path"`
	Files int    `json:"files"`
	Bytes int64  `json:"bytes"`
}

// Backup copies the whole working directory to <dest>/wk-scan. An
// interrupted copy is left in place; nothing is rolled back.
func (l Layout) Backup(dest string) (BackupResult, error) {
	if strings.TrimSpace(dest) == "" {
		return BackupResult{}, fmt.Errorf("%w: destination is empty", ErrInvalid)
	}
	src, err := filepath.Abs(l.WorkDir)
	if err != nil {
		return BackupResult{}, err
	}
	dest, err = filepath.Abs(dest)
	if err != nil {
		return BackupResult{}, err
	}
	target := filepath.Join(dest, BackupDirName)
	if isWithin(src, target) {
		return BackupResult{}, fmt.Errorf("%w: destination %s is inside the working directory", ErrInvalid, dest)
	}

	size, err := treeSize(src)
	if err != nil {
		return BackupResult{}, err
	}
	if err := EnsureDir(dest); err != nil {
		return BackupResult{}, err
	}
	if usage, err := disk.Usage(dest); err == nil && usage.Free < uint64(size) {
		return BackupResult{}, fmt.Errorf("not enough space on %s: need %s, free %s",
			dest, humanize.Bytes(uint64(size)), humanize.Bytes(usage.Free))
	}

	res := BackupResult{Path: target}
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		dst := filepath.Join(target, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		if skipInBackup(d.Name()) || !d.Type().IsRegular() {
			return nil
		}
		n, err := copyFile(p, dst)
		if err != nil {
			return fmt.Errorf("copy %s: %w", rel, err)
		}
		res.Files++
		res.Bytes += n
		return nil
	})
	if err != nil {
		return BackupResult{}, err
	}
	return res, nil
}

func copyFile(srcPath, dstPath string) (int64, error) {
	in, err := os.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dstPath)
	if err != nil {
		return 0, err
	}
	n, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		_ = os.Remove(dstPath)
		return 0, copyErr
	}
	if closeErr != nil {
		_ = os.Remove(dstPath)
		return 0, closeErr
	}
	return n, nil
}

func treeSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}

func skipInBackup(name string) bool {
	return name == LockFileName || strings.HasSuffix(name, ".tmp")
}

// isWithin reports whether p is root or below it.
func isWithin(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
