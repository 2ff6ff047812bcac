package scanlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBackup_CopiesWholeTree(t *testing.T) {
	s := newTestStore(t)
	obj := testObject(t, s)
	_, err := s.AppendRecord(obj, "2024-03-07", ScanRecord{QRCode: "A", Date: 1})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.layout.WorkDir, LockFileName), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.layout.DataDir(), "base.json.tmp"), []byte("x"), 0o644))

	dest := t.TempDir()
	res, err := s.Layout().Backup(dest)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, BackupDirName), res.Path)
	require.Equal(t, 2, res.Files)

	for _, rel := range []string{
		filepath.Join("data", "base.json"),
		filepath.Join("data", "common", "2024", "03", "07", "data.json"),
	} {
		want, err := os.ReadFile(filepath.Join(s.layout.WorkDir, rel))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(res.Path, rel))
		require.NoError(t, err)
		require.Equal(t, want, got, rel)
	}
	_, err = os.Stat(filepath.Join(res.Path, LockFileName))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(res.Path, "data", "base.json.tmp"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBackup_RefusesDestinationInsideWorkDir(t *testing.T) {
	l := Layout{WorkDir: t.TempDir()}
	_, err := l.Backup(filepath.Join(l.WorkDir, "downloads"))
	require.ErrorIs(t, err, ErrInvalid)
	_, err = l.Backup("")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestIsWithin(t *testing.T) {
	root := filepath.Join("/", "wk")
	require.True(t, isWithin(root, root))
	require.True(t, isWithin(root, filepath.Join(root, "a", "b")))
	require.False(t, isWithin(root, filepath.Join("/", "wk2")))
	require.False(t, isWithin(root, filepath.Join("/", "other")))
	require.True(t, isWithin(root, filepath.Join(root, "..x")))
}
