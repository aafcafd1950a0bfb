package captions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"caption-studio/internal/api"
	"caption-studio/internal/domain"
	"caption-studio/internal/jobs"
)

// ErrNoRunningJob is returned when cancel is requested in idle state.
var ErrNoRunningJob = errors.New("no running job")

// videoExtensions mirrors the service's video/* content-type check for
// an early client-side reject.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
}

// Service is the remote captioning surface the controller drives.
// Satisfied by *api.Client.
type Service interface {
	UploadVideo(ctx context.Context, filename string, video io.Reader, settings domain.SubtitleSettings) (domain.UploadResponse, error)
	JobStatus(ctx context.Context, jobID string) (domain.JobStatusResponse, error)
	ProbeDownload(ctx context.Context, jobID string) error
	Download(ctx context.Context, jobID string, w io.Writer) (string, error)
}

// View receives plain-data UI updates so the controller stays free of
// presentation specifics and testable headlessly.
type View interface {
	Notify(message string)
	ShowError(message string)
	SetProgress(jobID string, progress int)
	OfferDownload(jobID string)
	JobEnded(job domain.Job)
}

// ValidationError is a client-side rejection raised before any network
// call is made.
type ValidationError struct {
	Message string
}

// Error returns the user-facing validation message.
func (e *ValidationError) Error() string {
	return e.Message
}

// Controller drives the upload, poll, and download flow over the
// single job slot owned by the jobs manager.
type Controller struct {
	service  Service
	view     View
	jobs     *jobs.Manager
	logger   *slog.Logger
	interval time.Duration
	maxBytes int64

	// lastOffered remembers the one job id a download affordance was
	// created for, so a repeated completion signal cannot duplicate
	// it. Reset on the next submit.
	mu          sync.Mutex
	lastOffered string
}

// Options tunes controller behavior.
type Options struct {
	// PollInterval between status checks. Defaults to one second.
	PollInterval time.Duration
	// MaxUploadBytes rejects oversized files before upload. Zero
	// disables the check.
	MaxUploadBytes int64
	// Logger for diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewController wires the controller to its collaborators.
func NewController(service Service, view View, manager *jobs.Manager, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Controller{
		service:  service,
		view:     view,
		jobs:     manager,
		logger:   opts.Logger,
		interval: opts.PollInterval,
		maxBytes: opts.MaxUploadBytes,
	}
}

// Submit validates the selected file, uploads it with the given
// subtitle settings, and starts the status poll on success. Validation
// failures never reach the network.
func (c *Controller) Submit(ctx context.Context, path string, settings domain.SubtitleSettings) (domain.Job, error) {
	if err := c.validateFile(path); err != nil {
		c.view.ShowError(err.Error())
		return domain.Job{}, err
	}

	if err := c.jobs.Start(); err != nil {
		c.view.ShowError("A job is already in progress.")
		return domain.Job{}, err
	}

	c.mu.Lock()
	c.lastOffered = ""
	c.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		c.jobs.Clear(domain.JobPhaseFailed)
		msg := fmt.Sprintf("Cannot open %s.", filepath.Base(path))
		c.view.ShowError(msg)
		return domain.Job{}, fmt.Errorf("open video: %w", err)
	}
	defer file.Close()

	resp, err := c.service.UploadVideo(ctx, filepath.Base(path), file, settings)
	if err != nil {
		c.jobs.Clear(domain.JobPhaseFailed)
		c.reportUploadError(err)
		return domain.Job{}, err
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	if err := c.jobs.StartPolling(resp.JobID, cancel); err != nil {
		cancel()
		c.jobs.Clear(domain.JobPhaseFailed)
		c.view.ShowError("Could not start progress tracking.")
		return domain.Job{}, err
	}

	c.view.SetProgress(resp.JobID, 0)
	c.logger.Info("upload accepted", slog.String("job_id", resp.JobID))

	go c.poll(pollCtx, resp.JobID)
	return c.jobs.Current(), nil
}

// Cancel clears the active job slot, stopping any further poll ticks.
// An already-dispatched status request finishes but its result is
// dropped.
func (c *Controller) Cancel() error {
	if !c.jobs.IsRunning() {
		return ErrNoRunningJob
	}

	c.jobs.Clear(domain.JobPhaseIdle)
	c.view.Notify("Job cancelled.")
	return nil
}

// Download streams the captioned output for a completed job to
// destPath. Triggered only by explicit user action; never retried.
func (c *Controller) Download(ctx context.Context, jobID, destPath string) (string, error) {
	if err := c.service.ProbeDownload(ctx, jobID); err != nil {
		c.reportAPIError(err)
		return "", err
	}

	out, err := os.Create(destPath)
	if err != nil {
		c.view.ShowError("Cannot write to the chosen location.")
		return "", fmt.Errorf("create output file: %w", err)
	}

	name, err := c.service.Download(ctx, jobID, out)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close output file: %w", closeErr)
	}
	if err != nil {
		os.Remove(destPath)
		c.reportAPIError(err)
		return "", err
	}

	c.view.Notify(fmt.Sprintf("Saved %s.", name))
	return name, nil
}

// poll runs the fixed-interval status loop until the job reaches a
// terminal signal, a fetch fails, or the slot is cleared.
func (c *Controller) poll(ctx context.Context, jobID string) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if c.tick(ctx, jobID) {
				return
			}
		}
	}
}

// tick performs one status check. Returns true when polling must stop.
func (c *Controller) tick(ctx context.Context, jobID string) bool {
	// The slot may have been cleared between ticks; a stray tick is
	// a no-op.
	if c.jobs.ActiveJobID() != jobID {
		return true
	}

	status, err := c.service.JobStatus(ctx, jobID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return true
		}

		c.jobs.Clear(domain.JobPhaseFailed)
		c.reportAPIError(err)
		c.view.JobEnded(c.jobs.Current())
		return true
	}

	job := c.jobs.SetStatus(status.StatusID, status.Progress)
	if job.ID == "" {
		return true
	}
	c.view.SetProgress(jobID, status.Progress)

	// Terminal status and full progress are independent signals:
	// the first stops polling, the second makes the output
	// downloadable. Handle a job that reaches one without the other.
	switch {
	case job.Ready():
		c.jobs.Clear(domain.JobPhaseCompleted)
		c.offerDownload(jobID)
		c.view.JobEnded(c.jobs.Current())
		return true

	case job.Terminal():
		c.jobs.Clear(domain.JobPhaseFailed)
		name := status.StatusName
		if name == "" {
			name = fmt.Sprintf("status %d", status.StatusID)
		}
		c.view.ShowError(fmt.Sprintf("Captioning ended without a result (%s).", name))
		c.view.JobEnded(c.jobs.Current())
		return true
	}

	return false
}

// offerDownload creates the download affordance at most once per job.
func (c *Controller) offerDownload(jobID string) {
	c.mu.Lock()
	already := c.lastOffered == jobID
	if !already {
		c.lastOffered = jobID
	}
	c.mu.Unlock()

	if already {
		return
	}

	c.view.OfferDownload(jobID)
	c.view.Notify("Captioned video is ready to download.")
}

// reportUploadError renders server validation entries individually,
// otherwise falls back to the derived reason.
func (c *Controller) reportUploadError(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && len(apiErr.Detail) > 0 {
		for _, entry := range apiErr.Detail {
			c.view.ShowError(entry)
		}
		return
	}
	c.reportAPIError(err)
}

// reportAPIError shows one human-readable message for a failed call.
func (c *Controller) reportAPIError(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		c.view.ShowError(apiErr.Reason())
		return
	}
	c.view.ShowError(err.Error())
}

// validateFile rejects missing, oversized, and non-video selections
// before any network traffic.
func (c *Controller) validateFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return &ValidationError{Message: "Please choose a video file first."}
	}

	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Message: "The selected file does not exist."}
	}
	if info.IsDir() {
		return &ValidationError{Message: "The selected path is a directory, not a video file."}
	}
	if info.Size() == 0 {
		return &ValidationError{Message: "The selected file is empty."}
	}
	if c.maxBytes > 0 && info.Size() > c.maxBytes {
		return &ValidationError{
			Message: fmt.Sprintf("File is too large: limit is %d MB.", c.maxBytes/(1024*1024)),
		}
	}

	if !videoExtensions[strings.ToLower(filepath.Ext(path))] {
		return &ValidationError{Message: "The selected file is not a supported video format."}
	}
	return nil
}
