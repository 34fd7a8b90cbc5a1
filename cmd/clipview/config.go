package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipview/internal/logging"
	"go.klb.dev/clipview/internal/render"
	"go.klb.dev/clipview/internal/settings"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPVIEW_* env var prefix.
//
// Precedence (lowest to highest): defaults, config file, CLIPVIEW_* env vars, flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipview")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipview/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "clipview"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPVIEW")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command, defaultLevel string) {
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", defaultLevel, "log level: debug|info|warn|error")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addSettingsFlag adds the --settings flag to a command.
func addSettingsFlag(cmd *cobra.Command) {
	cmd.Flags().String("settings", "", "path to the viewer settings file (default: <user config dir>/clipview/"+settings.FileName+")")
}

// addColorFlag adds the --no-color flag to a command.
func addColorFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("no-color", false, "disable coloured markers")
}

// setupLogging reads logging flags from viper and installs the slog default.
func setupLogging(v *viper.Viper) error {
	format, err := logging.ParseFormat(v.GetString("log-format"))
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	logging.Setup(logging.Options{
		Format:  format,
		Level:   level,
		NoColor: v.GetBool("no-color"),
	})
	return nil
}

// openSettings returns the settings store selected by --settings and the
// settings it holds.
func openSettings(v *viper.Viper) (*settings.Store, settings.Settings, error) {
	path := v.GetString("settings")
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return nil, settings.Settings{}, err
		}
	}
	store := settings.NewStore(path)
	s, err := store.Load()
	if err != nil {
		return nil, settings.Settings{}, err
	}
	slog.Debug("settings loaded", "path", path, "topmost", s.Topmost, "color", s.Color)
	return store, s, nil
}

// newRenderer returns a renderer for w. Colour is disabled by --no-color or
// by the color setting; otherwise it is detected from w.
func newRenderer(v *viper.Viper, s settings.Settings, w io.Writer) *render.Renderer {
	if v.GetBool("no-color") || !s.Color {
		return render.New(w, render.WithColor(false))
	}
	return render.New(w)
}
