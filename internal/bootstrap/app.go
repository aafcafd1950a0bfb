package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"caption-studio/internal/api"
	"caption-studio/internal/captions"
	"caption-studio/internal/config"
	"caption-studio/internal/diagnostics"
	"caption-studio/internal/domain"
	"caption-studio/internal/jobs"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var videoDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Video files",
		Pattern:     "*.mp4;*.mov;*.mkv;*.avi;*.webm;*.m4v;*.mpeg;*.mpg",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// jobController isolates the upload/poll/download flow behind an
// interface for App tests.
type jobController interface {
	Submit(ctx context.Context, path string, settings domain.SubtitleSettings) (domain.Job, error)
	Download(ctx context.Context, jobID, destPath string) (string, error)
	Cancel() error
}

// App wires configuration, the API client, the job controller, and UI
// runtime callbacks. It implements captions.View by publishing bus
// events and pushing them to the frontend.
type App struct {
	Config      config.AppConfig
	Store       config.Store
	Jobs        *jobs.Manager
	Client      *api.Client
	Diagnostics domain.DiagnosticReport

	controller   jobController
	checker      *diagnostics.Checker
	settingsPath string
	assets       fs.FS
	logger       *slog.Logger

	mu         sync.Mutex
	events     *jobs.EventBus
	runtimeCtx context.Context
}

// New builds the application with persisted settings and startup
// diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures
// embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	cfg, err := config.LoadAppConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := api.NewClient(cfg.BaseURL, cfg.HTTPTimeout, cfg.UploadTimeout, logger)
	settingsPath := config.DefaultSettingsPath()
	checker := diagnostics.NewChecker(client)

	app := &App{
		Config:       cfg,
		Store:        config.NewJSONStore(settingsPath),
		Jobs:         jobs.NewManager(),
		Client:       client,
		checker:      checker,
		settingsPath: settingsPath,
		assets:       assets,
		logger:       logger,
		events:       jobs.NewEventBus(1000),
	}
	app.controller = captions.NewController(client, app, app.Jobs, captions.Options{
		PollInterval:   cfg.PollInterval,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         logger,
	})
	app.Diagnostics = checker.Run(context.Background(), cfg.BaseURL, settingsPath)

	return app, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Caption Studio",
		Width:       1080,
		Height:      760,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores the Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// PickVideoFile opens a native file dialog and returns the selection
// with display metadata. An empty path means the dialog was dismissed.
func (a *App) PickVideoFile() (domain.VideoFile, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return domain.VideoFile{}, err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select video file",
		Filters: videoDialogFilter,
	})
	if err != nil {
		return domain.VideoFile{}, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return domain.VideoFile{}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.VideoFile{}, fmt.Errorf("inspect selected file: %w", err)
	}

	return domain.VideoFile{
		Path:      path,
		Name:      filepath.Base(path),
		SizeBytes: info.Size(),
	}, nil
}

// UploadVideo submits the selected file with the given subtitle
// settings and starts progress polling.
func (a *App) UploadVideo(path string, settings domain.SubtitleSettings) (domain.Job, error) {
	return a.controller.Submit(context.Background(), path, normalizeSettings(settings))
}

// CancelJob clears the active job slot.
func (a *App) CancelJob() error {
	return a.controller.Cancel()
}

// SaveDownload asks for a destination and streams the captioned video
// for a completed job there. Returns the saved path.
func (a *App) SaveDownload(jobID string) (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	destPath, err := wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		Title:           "Save captioned video",
		DefaultFilename: "captioned_" + jobID + ".mp4",
	})
	if err != nil {
		return "", err
	}
	destPath = strings.TrimSpace(destPath)
	if destPath == "" {
		return "", nil
	}

	if _, err := a.controller.Download(context.Background(), jobID, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// CurrentJob returns current job metadata and phase.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// GetSettings loads and returns the persisted subtitle settings.
func (a *App) GetSettings() (domain.SubtitleSettings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.SubtitleSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings normalizes and persists the subtitle settings.
func (a *App) SaveSettings(settings domain.SubtitleSettings) (domain.SubtitleSettings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.SubtitleSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return normalized, nil
}

// GetDefaultSettings returns the baseline subtitle styling.
func (a *App) GetDefaultSettings() domain.SubtitleSettings {
	return config.DefaultSubtitleSettings()
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// RefreshDiagnostics reruns the service and filesystem checks.
func (a *App) RefreshDiagnostics() domain.DiagnosticReport {
	a.Diagnostics = a.checker.Run(context.Background(), a.Config.BaseURL, a.settingsPath)
	return a.Diagnostics
}

// Notify implements captions.View with a transient notification.
func (a *App) Notify(message string) {
	a.publishEvent(jobs.Event{Type: jobs.EventTypeNotice, Message: message})
}

// ShowError implements captions.View with an error notification.
func (a *App) ShowError(message string) {
	a.publishEvent(jobs.Event{Type: jobs.EventTypeError, Message: message})
}

// SetProgress implements captions.View with a progress update.
func (a *App) SetProgress(jobID string, progress int) {
	a.publishEvent(jobs.Event{
		JobID:    jobID,
		Type:     jobs.EventTypeProgress,
		Progress: progress,
	})
}

// OfferDownload implements captions.View with the one-time download
// affordance for a completed job.
func (a *App) OfferDownload(jobID string) {
	a.publishEvent(jobs.Event{JobID: jobID, Type: jobs.EventTypeReady})
}

// JobEnded implements captions.View with a final phase update.
func (a *App) JobEnded(job domain.Job) {
	a.publishEvent(jobs.Event{
		JobID:    job.ID,
		Type:     jobs.EventTypeStatus,
		Phase:    job.Phase,
		Progress: job.Progress,
	})
}

// publishEvent stores event history and emits runtime push
// notifications when a frontend is attached.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "job:event", published)
	}
}

// runtimeContext returns the Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings trims text fields and falls back to defaults for
// missing or out-of-range values.
func normalizeSettings(settings domain.SubtitleSettings) domain.SubtitleSettings {
	defaults := config.DefaultSubtitleSettings()

	settings.FontFamily = strings.TrimSpace(settings.FontFamily)
	settings.FontColor = strings.TrimSpace(settings.FontColor)
	settings.StrokeColor = strings.TrimSpace(settings.StrokeColor)

	if settings.FontFamily == "" {
		settings.FontFamily = defaults.FontFamily
	}
	if settings.FontColor == "" {
		settings.FontColor = defaults.FontColor
	}
	if settings.StrokeColor == "" {
		settings.StrokeColor = defaults.StrokeColor
	}
	if settings.FontSize <= 0 {
		settings.FontSize = defaults.FontSize
	}
	if settings.StrokeWidth < 0 {
		settings.StrokeWidth = defaults.StrokeWidth
	}
	if settings.Position < domain.PositionBottom || settings.Position > domain.PositionTop {
		settings.Position = defaults.Position
	}
	if settings.MaxChars <= 0 {
		settings.MaxChars = defaults.MaxChars
	}
	if settings.MaxDuration <= 0 {
		settings.MaxDuration = defaults.MaxDuration
	}
	if settings.MaxGap < 0 {
		settings.MaxGap = defaults.MaxGap
	}
	return settings
}
