package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// FileName is the settings file name inside the user config directory.
const FileName = "settings.toml"

// Store persists Settings as TOML.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store { return &Store{path: path} }

// DefaultPath returns <user config dir>/clipview/settings.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("settings: locate config dir: %w", err)
	}
	return filepath.Join(dir, "clipview", FileName), nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads the settings file. A missing file yields Default; keys absent
// from the file keep their default values.
func (s *Store) Load() (Settings, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(s.path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("settings: read %s: %w", s.path, err)
		}
	}

	var out Settings
	if err := v.Unmarshal(&out); err != nil {
		return Settings{}, fmt.Errorf("settings: decode %s: %w", s.path, err)
	}
	if err := out.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w (in %s)", err, s.path)
	}
	return out, nil
}

// Save writes st to the backing file, creating its directory if needed.
func (s *Store) Save(st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}

	v := viper.New()
	setDefaults(v, st)
	v.SetConfigType("toml")
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, st Settings) {
	v.SetDefault("font_family", st.FontFamily)
	v.SetDefault("font_size", st.FontSize)
	v.SetDefault("topmost", st.Topmost)
	v.SetDefault("color", st.Color)
	v.SetDefault("window.left", st.Window.Left)
	v.SetDefault("window.top", st.Window.Top)
	v.SetDefault("window.width", st.Window.Width)
	v.SetDefault("window.height", st.Window.Height)
}
