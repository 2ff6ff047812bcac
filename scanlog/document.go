package scanlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// readDocument decodes the JSON document at path into v. A missing file is
// reported with fs.ErrNotExist; a corrupt file is an error, never an empty doc.
func readDocument(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// writeDocument rewrites the whole document: temp file, fsync, rename.
func writeDocument(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// loadOrCreate reads the document at path, or writes init() there first when
// the file does not exist yet.
func loadOrCreate[T any](path string, init func() T) (T, bool, error) {
	var doc T
	err := readDocument(path, &doc)
	if err == nil {
		return doc, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return doc, false, err
	}
	doc = init()
	if err := writeDocument(path, doc); err != nil {
		return doc, false, err
	}
	return doc, true, nil
}

// withDocument is the read-modify-write cycle used for every mutation. The
// document is written back only when fn succeeds.
func withDocument[T any](path string, init func() T, fn func(*T) error) (T, error) {
	doc, _, err := loadOrCreate(path, init)
	if err != nil {
		return doc, err
	}
	if err := fn(&doc); err != nil {
		return doc, err
	}
	if err := writeDocument(path, doc); err != nil {
		return doc, err
	}
	return doc, nil
}
