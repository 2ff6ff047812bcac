package scanlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	SettingsFileName = ".wk-scan.yaml"
	envPrefix        = "WKSCAN"
	DefaultListen    = "127.0.0.1:8765"
)

// Settings is the user configuration, persisted in ~/.wk-scan.yaml.
type Settings struct {
	WorkDir  string `mapstructure:"work_dir" yaml:"work_dir" json:"workDir"`
	Language string `mapstructure:"language" yaml:"language" json:"language"`
	// Internet toggles features that need network access in the UI.
	Internet bool   `mapstructure:"internet" yaml:"internet" json:"internet"`
	Host     string `mapstructure:"host" yaml:"host" json:"host"`
	Listen   string `mapstructure:"listen" yaml:"listen" json:"listen"`
	Debug    bool   `mapstructure:"debug" yaml:"debug" json:"debug"`
}

func DefaultSettings() Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Settings{
		WorkDir:  filepath.Join(home, "wk", "wk-scan"),
		Language: defaultLanguage,
		Listen:   DefaultListen,
	}
}

// DefaultSettingsPath is ~/.wk-scan.yaml.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return SettingsFileName
	}
	return filepath.Join(home, SettingsFileName)
}

// LoadSettings reads path over the defaults, then WKSCAN_* env vars. A missing
// file is created with the defaults.
func LoadSettings(path string) (Settings, error) {
	def := DefaultSettings()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := SaveSettings(path, def); err != nil {
			return Settings{}, err
		}
	}

	v := viper.New()
	v.SetDefault("work_dir", def.WorkDir)
	v.SetDefault("language", def.Language)
	v.SetDefault("internet", def.Internet)
	v.SetDefault("host", def.Host)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("debug", def.Debug)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.WorkDir) == "" {
		return fmt.Errorf("%w: work_dir is empty", ErrInvalid)
	}
	if !SupportedLanguage(s.Language) {
		return fmt.Errorf("%w: language %q", ErrInvalid, s.Language)
	}
	return nil
}

// SaveSettings rewrites the settings file atomically.
func SaveSettings(path string, s Settings) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// SettingsPatch carries a partial update; nil fields keep their value.
type SettingsPatch struct {
	WorkDir  *string `json:"workDir,omitempty"`
	Language *string `json:"language,omitempty"`
	Internet *bool   `json:"internet,omitempty"`
	Host     *string `json:"host,omitempty"`
	Listen   *string `json:"listen,omitempty"`
	Debug    *bool   `json:"debug,omitempty"`
}

func (s Settings) Apply(p SettingsPatch) Settings {
	if p.WorkDir != nil {
		s.WorkDir = *p.WorkDir
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Internet != nil {
		s.Internet = *p.Internet
	}
	if p.Host != nil {
		s.Host = *p.Host
	}
	if p.Listen != nil {
		s.Listen = *p.Listen
	}
	if p.Debug != nil {
		s.Debug = *p.Debug
	}
	return s
}
