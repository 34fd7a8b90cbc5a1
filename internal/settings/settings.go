// Package settings holds the persisted viewer preferences.
//
// Settings is a plain value: it is loaded once at startup, handed to the
// components that need it, and written back through a Store when it changes.
package settings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// Window is the saved viewer geometry.
type Window struct {
	Left   int `mapstructure:"left" json:"left"`
	Top    int `mapstructure:"top" json:"top"`
	Width  int `mapstructure:"width" json:"width"`
	Height int `mapstructure:"height" json:"height"`
}

// Settings are the user preferences.
type Settings struct {
	FontFamily string  `mapstructure:"font_family" json:"font_family"`
	FontSize   float64 `mapstructure:"font_size" json:"font_size"`
	Topmost    bool    `mapstructure:"topmost" json:"topmost"`
	Color      bool    `mapstructure:"color" json:"color"`
	Window     Window  `mapstructure:"window" json:"window"`
}

// Default returns the settings used when nothing has been saved yet.
func Default() Settings {
	return Settings{
		FontFamily: "Meiryo",
		FontSize:   12,
		Color:      true,
		Window:     Window{Width: 525, Height: 350},
	}
}

// Keys returns every settable key in display order.
func Keys() []string {
	return []string{
		"font_family",
		"font_size",
		"topmost",
		"color",
		"window.left",
		"window.top",
		"window.width",
		"window.height",
	}
}

// Get returns the value of key formatted for display.
func (s Settings) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case "font_family":
		return s.FontFamily, nil
	case "font_size":
		return cast.ToString(s.FontSize), nil
	case "topmost":
		return cast.ToString(s.Topmost), nil
	case "color":
		return cast.ToString(s.Color), nil
	case "window.left":
		return cast.ToString(s.Window.Left), nil
	case "window.top":
		return cast.ToString(s.Window.Top), nil
	case "window.width":
		return cast.ToString(s.Window.Width), nil
	case "window.height":
		return cast.ToString(s.Window.Height), nil
	}
	return "", unknownKey(key)
}

// Set parses value and stores it under key. The receiver is left unchanged
// when the value does not parse or fails validation.
func (s *Settings) Set(key, value string) error {
	next := *s
	var err error
	switch strings.ToLower(key) {
	case "font_family":
		next.FontFamily = strings.TrimSpace(value)
	case "font_size":
		next.FontSize, err = cast.ToFloat64E(value)
	case "topmost":
		next.Topmost, err = cast.ToBoolE(value)
	case "color":
		next.Color, err = cast.ToBoolE(value)
	case "window.left":
		next.Window.Left, err = cast.ToIntE(value)
	case "window.top":
		next.Window.Top, err = cast.ToIntE(value)
	case "window.width":
		next.Window.Width, err = cast.ToIntE(value)
	case "window.height":
		next.Window.Height, err = cast.ToIntE(value)
	default:
		return unknownKey(key)
	}
	if err != nil {
		return fmt.Errorf("settings: %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	switch {
	case s.FontFamily == "":
		return fmt.Errorf("settings: font_family must not be empty")
	case s.FontSize <= 0 || s.FontSize > 400:
		return fmt.Errorf("settings: font_size %v out of range (0, 400]", s.FontSize)
	case s.Window.Width <= 0 || s.Window.Height <= 0:
		return fmt.Errorf("settings: window size %dx%d must be positive", s.Window.Width, s.Window.Height)
	}
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("settings: unknown key %q (valid: %s)", key, strings.Join(slices.Sorted(slices.Values(Keys())), ", "))
}
