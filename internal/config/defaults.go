package config

import (
	"os"
	"path/filepath"

	"caption-studio/internal/domain"
)

// DefaultSubtitleSettings returns the styling applied when a form field
// has no explicit user value. Matches the service's own form defaults.
func DefaultSubtitleSettings() domain.SubtitleSettings {
	return domain.SubtitleSettings{
		FontFamily:  "Arial",
		FontSize:    24,
		FontColor:   "white",
		StrokeColor: "black",
		StrokeWidth: 2,
		Position:    domain.PositionBottom,
		Shadow:      false,
		MaxChars:    30,
		MaxDuration: 2.5,
		MaxGap:      1.5,
	}
}

// DefaultSettingsPath returns the per-user location of the persisted
// subtitle settings file.
func DefaultSettingsPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".caption-studio", "settings.json")
}

// DefaultConfigPath returns the per-user location of the optional app
// config file read at startup.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".caption-studio", "config.yml")
}
