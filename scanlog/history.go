package scanlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

type HistoryEntry struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// History lists the partitions of value that exist on disk for year
// (YYYY), oldest first. Directories without a data.json are skipped.
func (l Layout) History(value string, year string) ([]HistoryEntry, error) {
	if _, err := strconv.Atoi(year); err != nil || len(year) != 4 {
		return nil, fmt.Errorf("%w: year %q", ErrInvalid, year)
	}
	objDir, err := l.ObjectDir(value)
	if err != nil {
		return nil, err
	}
	yearDir := filepath.Join(objDir, year)

	months, err := os.ReadDir(yearDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []HistoryEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := []HistoryEntry{}
	for _, m := range months {
		if !m.IsDir() {
			continue
		}
		days, err := os.ReadDir(filepath.Join(yearDir, m.Name()))
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			if !d.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(yearDir, m.Name(), d.Name(), partitionFileName)); err != nil {
				continue
			}
			date := year + "-" + m.Name() + "-" + d.Name()
			if _, err := ParseDate(date); err != nil {
				continue
			}
			out = append(out, HistoryEntry{Date: date, Name: date})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
