package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"caption-studio/internal/domain"
)

// Store defines persistence operations for user subtitle settings.
type Store interface {
	Load() (domain.SubtitleSettings, error)
	Save(domain.SubtitleSettings) error
}

// JSONStore persists subtitle settings in a single JSON file on disk.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed settings store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads settings from disk or returns defaults when missing.
func (s *JSONStore) Load() (domain.SubtitleSettings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSubtitleSettings(), nil
		}

		return domain.SubtitleSettings{}, err
	}

	var settings domain.SubtitleSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return domain.SubtitleSettings{}, err
	}

	return settings, nil
}

// Save writes settings as indented JSON and creates parent directories.
func (s *JSONStore) Save(settings domain.SubtitleSettings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}
