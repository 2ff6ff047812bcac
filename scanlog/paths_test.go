package scanlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionPath_Layout(t *testing.T) {
	l := Layout{WorkDir: "/wk"}
	p, err := l.PartitionPath("line-a", "2024-03-07")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/wk", "data", "line-a", "2024", "03", "07", "data.json"), p)

	again, err := l.PartitionPath("line-a", "2024-03-07")
	require.NoError(t, err)
	require.Equal(t, p, again)
}

func TestPartitionPath_DistinctInputsNeverCollide(t *testing.T) {
	l := Layout{WorkDir: "/wk"}
	seen := map[string]string{}
	for _, v := range []string{"a", "b", "ab", "a_b", "2024"} {
		for _, d := range []string{"2024-01-02", "2024-12-01", "2025-01-02", "2024-01-20"} {
			p, err := l.PartitionPath(v, d)
			require.NoError(t, err)
			key := v + "|" + d
			prev, dup := seen[p]
			require.False(t, dup, "%s and %s share %s", prev, key, p)
			seen[p] = key
		}
	}
}

func TestParseDate_RejectsNonCanonical(t *testing.T) {
	for _, d := range []string{"", "2024-3-7", "2024/03/07", "2024-02-30", "24-03-07"} {
		_, err := ParseDate(d)
		require.ErrorIs(t, err, ErrInvalid, d)
	}
	day, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, "2024-02-29", FormatDate(day))
}

func TestObjectDir_RejectsEscapingKeys(t *testing.T) {
	l := Layout{WorkDir: "/wk"}
	for _, v := range []string{"", " ", ".", "..", "a/b", `a\b`, "a\x00b"} {
		_, err := l.ObjectDir(v)
		require.ErrorIs(t, err, ErrInvalid, "%q", v)
	}
}

func TestDownloadsDir(t *testing.T) {
	dir, err := Layout{WorkDir: "/wk"}.DownloadsDir("通用扫码对象")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/wk", "downloads", "通用扫码对象"), dir)
}

func TestDownloadsDir_SanitizesDisplayName(t *testing.T) {
	l := Layout{WorkDir: "/wk"}
	for name, want := range map[string]string{
		"A/B":      "A_B",
		`C:\D`:     "C__D",
		"..":       "__",
		" Line 1 ": "Line 1",
	} {
		dir, err := l.DownloadsDir(name)
		require.NoError(t, err, name)
		require.Equal(t, filepath.Join("/wk", "downloads", want), dir, name)
	}

	_, err := l.DownloadsDir("  ")
	require.ErrorIs(t, err, ErrInvalid)
}
