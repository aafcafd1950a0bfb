package bootstrap

import (
	"context"
	"testing"

	"caption-studio/internal/config"
	"caption-studio/internal/domain"
	"caption-studio/internal/jobs"
)

// fakeStore captures saved settings for App tests.
type fakeStore struct {
	settings domain.SubtitleSettings
	saved    []domain.SubtitleSettings
}

// Load returns preconfigured settings.
func (s *fakeStore) Load() (domain.SubtitleSettings, error) {
	return s.settings, nil
}

// Save records the persisted value.
func (s *fakeStore) Save(settings domain.SubtitleSettings) error {
	s.saved = append(s.saved, settings)
	return nil
}

// fakeController records controller invocations.
type fakeController struct {
	submitPath     string
	submitSettings domain.SubtitleSettings
	job            domain.Job
	downloads      []string
	cancelled      int
}

func (c *fakeController) Submit(ctx context.Context, path string, settings domain.SubtitleSettings) (domain.Job, error) {
	c.submitPath = path
	c.submitSettings = settings
	return c.job, nil
}

func (c *fakeController) Download(ctx context.Context, jobID, destPath string) (string, error) {
	c.downloads = append(c.downloads, jobID)
	return destPath, nil
}

func (c *fakeController) Cancel() error {
	c.cancelled++
	return nil
}

func newTestApp(store *fakeStore, controller *fakeController) *App {
	return &App{
		Store:      store,
		Jobs:       jobs.NewManager(),
		controller: controller,
		events:     jobs.NewEventBus(100),
	}
}

// TestUploadVideoNormalizesSettings checks missing fields are filled
// from defaults before reaching the controller.
func TestUploadVideoNormalizesSettings(t *testing.T) {
	controller := &fakeController{job: domain.Job{ID: "abc", Phase: domain.JobPhasePolling}}
	app := newTestApp(&fakeStore{}, controller)

	job, err := app.UploadVideo("/videos/clip.mp4", domain.SubtitleSettings{Shadow: true})
	if err != nil {
		t.Fatalf("UploadVideo: %v", err)
	}
	if job.ID != "abc" {
		t.Fatalf("job id = %q, want abc", job.ID)
	}
	if controller.submitPath != "/videos/clip.mp4" {
		t.Fatalf("path = %q", controller.submitPath)
	}

	got := controller.submitSettings
	defaults := config.DefaultSubtitleSettings()
	if got.FontFamily != defaults.FontFamily || got.FontSize != defaults.FontSize {
		t.Fatalf("settings not normalized: %+v", got)
	}
	if !got.Shadow {
		t.Fatal("explicit shadow flag should survive normalization")
	}
}

// TestSaveSettingsNormalizesAndPersists checks out-of-range values are
// corrected before hitting the store.
func TestSaveSettingsNormalizesAndPersists(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, &fakeController{})

	saved, err := app.SaveSettings(domain.SubtitleSettings{
		FontFamily: "  Georgia  ",
		FontSize:   -1,
		Position:   9,
		MaxChars:   0,
	})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	if saved.FontFamily != "Georgia" {
		t.Fatalf("font family = %q", saved.FontFamily)
	}
	if saved.FontSize != 24 {
		t.Fatalf("font size = %d, want default 24", saved.FontSize)
	}
	if saved.Position != domain.PositionBottom {
		t.Fatalf("position = %d, want bottom", saved.Position)
	}
	if saved.MaxChars != 30 {
		t.Fatalf("max chars = %d, want default 30", saved.MaxChars)
	}
	if len(store.saved) != 1 || store.saved[0] != saved {
		t.Fatalf("store saved = %+v", store.saved)
	}
}

// TestViewEventsReachTheBus checks View callbacks become sequenced
// events readable by the frontend.
func TestViewEventsReachTheBus(t *testing.T) {
	app := newTestApp(&fakeStore{}, &fakeController{})

	app.SetProgress("abc", 42)
	app.Notify("done soon")
	app.ShowError("boom")
	app.OfferDownload("abc")
	app.JobEnded(domain.Job{ID: "abc", Phase: domain.JobPhaseCompleted, Progress: 100})

	events := app.JobEvents(0)
	if len(events) != 5 {
		t.Fatalf("events = %d, want 5", len(events))
	}

	wantTypes := []jobs.EventType{
		jobs.EventTypeProgress,
		jobs.EventTypeNotice,
		jobs.EventTypeError,
		jobs.EventTypeReady,
		jobs.EventTypeStatus,
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d type = %s, want %s", i, events[i].Type, want)
		}
	}
	if events[0].Progress != 42 {
		t.Fatalf("progress event = %+v", events[0])
	}

	// Incremental read skips already-seen events.
	if rest := app.JobEvents(events[2].Seq); len(rest) != 2 {
		t.Fatalf("incremental read = %d events, want 2", len(rest))
	}
}

// TestCancelJobDelegates checks the bound method reaches the
// controller.
func TestCancelJobDelegates(t *testing.T) {
	controller := &fakeController{}
	app := newTestApp(&fakeStore{}, controller)

	if err := app.CancelJob(); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	if controller.cancelled != 1 {
		t.Fatalf("cancel calls = %d, want 1", controller.cancelled)
	}
}

// TestDialogMethodsRequireRuntime checks dialog-backed methods fail
// cleanly before the UI runtime attaches.
func TestDialogMethodsRequireRuntime(t *testing.T) {
	app := newTestApp(&fakeStore{}, &fakeController{})

	if _, err := app.PickVideoFile(); err == nil {
		t.Fatal("expected error without runtime context")
	}
	if _, err := app.SaveDownload("abc"); err == nil {
		t.Fatal("expected error without runtime context")
	}
}
