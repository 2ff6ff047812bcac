package scanlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistory_ListsExistingPartitions(t *testing.T) {
	s := newTestStore(t)
	obj := testObject(t, s)
	for _, d := range []string{"2024-11-02", "2024-03-07", "2024-03-01", "2023-12-31"} {
		_, err := s.Partition(obj, d)
		require.NoError(t, err)
	}
	// a day directory without data.json and a stray name are ignored
	require.NoError(t, EnsureDir(filepath.Join(s.layout.DataDir(), obj.Value, "2024", "05", "05")))
	require.NoError(t, EnsureDir(filepath.Join(s.layout.DataDir(), obj.Value, "2024", "05", "xx")))
	require.NoError(t, os.WriteFile(filepath.Join(s.layout.DataDir(), obj.Value, "2024", "05", "xx", "data.json"), []byte("{}"), 0o644))

	got, err := s.Layout().History(obj.Value, "2024")
	require.NoError(t, err)
	require.Equal(t, []HistoryEntry{
		{Date: "2024-03-01", Name: "2024-03-01"},
		{Date: "2024-03-07", Name: "2024-03-07"},
		{Date: "2024-11-02", Name: "2024-11-02"},
	}, got)
}

func TestHistory_EmptyAndInvalid(t *testing.T) {
	l := Layout{WorkDir: t.TempDir()}
	got, err := l.History("common", "2030")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = l.History("common", "24")
	require.ErrorIs(t, err, ErrInvalid)
	_, err = l.History("../x", "2024")
	require.ErrorIs(t, err, ErrInvalid)
}
