package scanlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	dataDirName       = "data"
	catalogFileName   = "base.json"
	partitionFileName = "data.json"
	downloadsDirName  = "downloads"
	logsDirName       = "logs"
)

// Layout resolves every on-disk location below the working directory.
// It holds no other state, so the same inputs always give the same path.
type Layout struct {
	WorkDir string
}

func (l Layout) DataDir() string {
	return filepath.Join(l.WorkDir, dataDirName)
}

func (l Layout) CatalogPath() string {
	return filepath.Join(l.DataDir(), catalogFileName)
}

func (l Layout) LogsDir() string {
	return filepath.Join(l.WorkDir, logsDirName)
}

// ObjectDir is the root of all partitions of one scan object.
func (l Layout) ObjectDir(objectValue string) (string, error) {
	if err := checkPathKey(objectValue); err != nil {
		return "", err
	}
	return filepath.Join(l.DataDir(), objectValue), nil
}

// PartitionDir maps (objectValue, YYYY-MM-DD) to data/<value>/<YYYY>/<MM>/<DD>.
func (l Layout) PartitionDir(objectValue string, date string) (string, error) {
	objDir, err := l.ObjectDir(objectValue)
	if err != nil {
		return "", err
	}
	day, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return filepath.Join(objDir,
		fmt.Sprintf("%04d", day.Year()),
		fmt.Sprintf("%02d", int(day.Month())),
		fmt.Sprintf("%02d", day.Day()),
	), nil
}

func (l Layout) PartitionPath(objectValue string, date string) (string, error) {
	dir, err := l.PartitionDir(objectValue, date)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, partitionFileName), nil
}

// DownloadsDir is where spreadsheet exports of one object are written.
// Separators and other characters a folder name cannot hold become "_".
func (l Layout) DownloadsDir(objectName string) (string, error) {
	folder := folderName(objectName)
	if err := checkPathKey(folder); err != nil {
		return "", err
	}
	return filepath.Join(l.WorkDir, downloadsDirName, folder), nil
}

var folderReplacer = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_", "\x00", "_",
)

func folderName(name string) string {
	name = strings.TrimSpace(folderReplacer.Replace(name))
	if strings.Trim(name, ".") == "" && name != "" {
		return strings.Repeat("_", len(name))
	}
	return name
}

// EnsureDir creates dir and its parents; an existing dir is not an error.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}

// ParseDate accepts only the canonical YYYY-MM-DD form.
func ParseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrInvalid, date, err)
	}
	if day.Format(DateLayout) != strings.TrimSpace(date) {
		return time.Time{}, fmt.Errorf("%w: date %q is not canonical", ErrInvalid, date)
	}
	return day, nil
}

func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// checkPathKey rejects keys that would escape or alias another directory.
func checkPathKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty path key", ErrInvalid)
	}
	if key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: path key %q", ErrInvalid, key)
	}
	return nil
}
