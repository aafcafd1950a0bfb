package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"caption-studio/internal/domain"
)

// Pinger checks captioning service liveness. Satisfied by *api.Client.
type Pinger interface {
	Health(ctx context.Context) (domain.HealthResponse, error)
}

// Checker validates the remote service and local filesystem paths the
// app depends on.
type Checker struct {
	pinger     Pinger
	timeout    time.Duration
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker(pinger Pinger) *Checker {
	return &Checker{
		pinger:     pinger,
		timeout:    5 * time.Second,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, serviceURL, settingsPath string) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkService(ctx, serviceURL),
		c.checkSettingsFile(settingsPath),
		c.checkSettingsDir(filepath.Dir(settingsPath)),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkService verifies the captioning service answers its health
// endpoint.
func (c *Checker) checkService(ctx context.Context, serviceURL string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "service_health",
		Name: "Captioning service",
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	health, err := c.pinger.Health(ctx)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Service unreachable at %s", serviceURL)
		item.Hint = "Start the captioning service or point CAPTION_BASE_URL at a running instance."
		return item
	}

	if health.Status != "healthy" {
		item.Status = domain.DiagnosticStatusWarn
		item.Message = fmt.Sprintf("Service responded with status %q", health.Status)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Service healthy at %s", serviceURL)
	return item
}

// checkSettingsFile validates the persisted settings file when present.
func (c *Checker) checkSettingsFile(path string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "settings_file",
		Name: "Settings file",
	}

	info, err := c.stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			item.Status = domain.DiagnosticStatusWarn
			item.Message = "No saved settings yet; defaults will be used."
			return item
		}

		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot access settings file: %s", path)
		item.Hint = "Check permissions on the settings directory."
		return item
	}

	if info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Settings path is a directory: %s", path)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Settings file found: %s", path)
	return item
}

// checkSettingsDir verifies the settings directory is writable so
// saves will not fail later.
func (c *Checker) checkSettingsDir(dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "settings_dir",
		Name: "Settings directory",
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create settings directory: %s", dir)
		item.Hint = "Check permissions on the parent directory."
		return item
	}

	probe, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Settings directory is not writable: %s", dir)
		item.Hint = "Check permissions on the settings directory."
		return item
	}
	name := probe.Name()
	probe.Close()
	if err := c.remove(name); err != nil {
		item.Status = domain.DiagnosticStatusWarn
		item.Message = fmt.Sprintf("Could not remove write probe: %s", name)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Settings directory writable: %s", dir)
	return item
}
