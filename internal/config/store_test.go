package config

import (
	"os"
	"path/filepath"
	"testing"

	"caption-studio/internal/domain"
)

// TestDefaultSubtitleSettings verifies the service form defaults.
func TestDefaultSubtitleSettings(t *testing.T) {
	settings := DefaultSubtitleSettings()
	if settings.FontFamily != "Arial" {
		t.Fatalf("font family = %q, want Arial", settings.FontFamily)
	}
	if settings.FontSize != 24 {
		t.Fatalf("font size = %d, want 24", settings.FontSize)
	}
	if settings.FontColor != "white" || settings.StrokeColor != "black" {
		t.Fatalf("colors = %q/%q", settings.FontColor, settings.StrokeColor)
	}
	if settings.StrokeWidth != 2 {
		t.Fatalf("stroke width = %d, want 2", settings.StrokeWidth)
	}
	if settings.Position != domain.PositionBottom {
		t.Fatalf("position = %d, want bottom", settings.Position)
	}
	if settings.Shadow {
		t.Fatal("shadow should default to disabled")
	}
	if settings.MaxChars != 30 {
		t.Fatalf("max chars = %d, want 30", settings.MaxChars)
	}
	if settings.MaxDuration != 2.5 || settings.MaxGap != 1.5 {
		t.Fatalf("durations = %v/%v", settings.MaxDuration, settings.MaxGap)
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != DefaultSubtitleSettings() {
		t.Fatalf("settings = %+v, want defaults", got)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.SubtitleSettings{
		FontFamily:  "Helvetica",
		FontSize:    32,
		FontColor:   "yellow",
		StrokeColor: "navy",
		StrokeWidth: 3,
		Position:    domain.PositionTop,
		Shadow:      true,
		MaxChars:    42,
		MaxDuration: 3.5,
		MaxGap:      0.5,
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}
