package scanlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSettings_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	s, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadSettings_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("work_dir: /data/wk\nlanguage: en\ninternet: true\n"), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, "/data/wk", s.WorkDir)
	require.Equal(t, "en", s.Language)
	require.True(t, s.Internet)
	require.Equal(t, DefaultListen, s.Listen)

	t.Setenv("WKSCAN_LANGUAGE", "vi")
	s, err = LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, "vi", s.Language)
}

func TestLoadSettings_RejectsUnknownLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("work_dir: /data/wk\nlanguage: fr\n"), 0o644))
	_, err := LoadSettings(path)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SettingsFileName)
	want := Settings{WorkDir: "/x", Language: "jap", Internet: true, Host: "10.0.0.2", Listen: ":9000", Debug: true}
	require.NoError(t, SaveSettings(path, want))

	got, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSettings_Apply(t *testing.T) {
	base := Settings{WorkDir: "/a", Language: "zh", Listen: ":1"}
	lang := "en"
	off := false
	on := true
	got := base.Apply(SettingsPatch{Language: &lang, Internet: &on, Debug: &off})
	require.Equal(t, Settings{WorkDir: "/a", Language: "en", Internet: true, Listen: ":1"}, got)
	require.Equal(t, "zh", base.Language)
}
