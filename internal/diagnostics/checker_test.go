package diagnostics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"caption-studio/internal/domain"
)

// fakePinger scripts the service health response.
type fakePinger struct {
	health domain.HealthResponse
	err    error
}

func (p *fakePinger) Health(ctx context.Context) (domain.HealthResponse, error) {
	return p.health, p.err
}

func findItem(t *testing.T, report domain.DiagnosticReport, id string) domain.DiagnosticItem {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("item %s not found in %+v", id, report.Items)
	return domain.DiagnosticItem{}
}

// TestCheckerAllPass verifies the healthy baseline report.
func TestCheckerAllPass(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(settingsPath, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	checker := NewChecker(&fakePinger{health: domain.HealthResponse{Status: "healthy", Timestamp: time.Now()}})
	report := checker.Run(context.Background(), "http://127.0.0.1:8000", settingsPath)

	if report.HasFailures {
		t.Fatalf("unexpected failures: %+v", report.Items)
	}
	for _, id := range []string{"service_health", "settings_file", "settings_dir"} {
		if item := findItem(t, report, id); item.Status != domain.DiagnosticStatusPass {
			t.Errorf("%s status = %s, want pass", id, item.Status)
		}
	}
}

// TestCheckerServiceUnreachable verifies a failed ping is a failure
// with a hint.
func TestCheckerServiceUnreachable(t *testing.T) {
	checker := NewChecker(&fakePinger{err: errors.New("connection refused")})
	report := checker.Run(context.Background(), "http://127.0.0.1:8000", filepath.Join(t.TempDir(), "settings.json"))

	if !report.HasFailures {
		t.Fatal("expected failures")
	}
	item := findItem(t, report, "service_health")
	if item.Status != domain.DiagnosticStatusFail {
		t.Fatalf("status = %s, want fail", item.Status)
	}
	if item.Hint == "" {
		t.Fatal("expected a hint for an unreachable service")
	}
}

// TestCheckerUnhealthyServiceWarns verifies a degraded status is a
// warning, not a failure.
func TestCheckerUnhealthyServiceWarns(t *testing.T) {
	dir := t.TempDir()
	checker := NewChecker(&fakePinger{health: domain.HealthResponse{Status: "degraded"}})
	report := checker.Run(context.Background(), "http://127.0.0.1:8000", filepath.Join(dir, "settings.json"))

	item := findItem(t, report, "service_health")
	if item.Status != domain.DiagnosticStatusWarn {
		t.Fatalf("status = %s, want warn", item.Status)
	}
	if report.HasFailures {
		t.Fatal("a warning alone should not flag failures")
	}
}

// TestCheckerMissingSettingsFileWarns verifies first-run state.
func TestCheckerMissingSettingsFileWarns(t *testing.T) {
	checker := NewChecker(&fakePinger{health: domain.HealthResponse{Status: "healthy"}})
	report := checker.Run(context.Background(), "http://127.0.0.1:8000", filepath.Join(t.TempDir(), "settings.json"))

	item := findItem(t, report, "settings_file")
	if item.Status != domain.DiagnosticStatusWarn {
		t.Fatalf("status = %s, want warn", item.Status)
	}
}

// TestCheckerUnwritableSettingsDir verifies the write probe failure
// path using injected filesystem functions.
func TestCheckerUnwritableSettingsDir(t *testing.T) {
	checker := NewChecker(&fakePinger{health: domain.HealthResponse{Status: "healthy"}})
	checker.mkdirAll = func(string, os.FileMode) error { return nil }
	checker.createTemp = func(string, string) (*os.File, error) {
		return nil, errors.New("read-only filesystem")
	}

	report := checker.Run(context.Background(), "http://127.0.0.1:8000", filepath.Join(t.TempDir(), "settings.json"))
	item := findItem(t, report, "settings_dir")
	if item.Status != domain.DiagnosticStatusFail {
		t.Fatalf("status = %s, want fail", item.Status)
	}
}
