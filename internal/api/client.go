package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"caption-studio/internal/domain"
)

// Multipart form field names expected by the upload endpoint.
const (
	fieldVideo       = "video"
	fieldFontFamily  = "font_family"
	fieldFontSize    = "font_size"
	fieldFontColor   = "font_color"
	fieldStrokeColor = "stroke_color"
	fieldStrokeWidth = "stroke_width"
	fieldPosition    = "position"
	fieldShadow      = "shadow"
	fieldMaxChars    = "max_chars"
	fieldMaxDuration = "max_duration"
	fieldMaxGap      = "max_gap"
)

// Client performs HTTP calls against the captioning service and maps
// non-success responses to classified errors. It never retries.
// Uploads run on a separate http.Client with a longer deadline, since
// pushing a large video takes far more time than a status fetch.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	logger       *slog.Logger
}

// NewClient creates a client for the given service origin. A
// non-positive uploadTimeout falls back to the general timeout.
func NewClient(baseURL string, timeout, uploadTimeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if uploadTimeout <= 0 {
		uploadTimeout = timeout
	}

	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		uploadClient: &http.Client{Timeout: uploadTimeout},
		logger:       logger,
	}
}

// BaseURL returns the configured service origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one request on the general client.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	return c.doWith(c.httpClient, req)
}

// doWith performs one request and returns the raw response on 2xx. Any
// other outcome is logged and returned as a classified *Error with the
// body consumed for detail parsing.
func (c *Client) doWith(httpClient *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := httpClient.Do(req)
	if err != nil {
		apiErr := &Error{Kind: ErrorKindTransport, Err: err}
		c.logger.Error("request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("error", err.Error()))
		return nil, apiErr
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	apiErr := &Error{
		Kind:       classifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Detail:     parseDetail(body),
	}
	c.logger.Error("request rejected",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.String("kind", string(apiErr.Kind)))
	return nil, apiErr
}

// UploadVideo submits a video stream plus subtitle settings as one
// multipart request and returns the created job. The body is streamed
// through a pipe so large files are never buffered in memory.
func (c *Client) UploadVideo(ctx context.Context, filename string, video io.Reader, settings domain.SubtitleSettings) (domain.UploadResponse, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(writer, filename, video, settings)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/jobs/upload", pr)
	if err != nil {
		return domain.UploadResponse{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.doWith(c.uploadClient, req)
	if err != nil {
		return domain.UploadResponse{}, err
	}
	defer resp.Body.Close()

	var out domain.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.UploadResponse{}, fmt.Errorf("decode upload response: %w", err)
	}
	return out, nil
}

// writeUploadForm emits the settings fields and video payload in the
// exact field names the service's form parser expects.
func writeUploadForm(writer *multipart.Writer, filename string, video io.Reader, settings domain.SubtitleSettings) error {
	fields := []struct {
		name  string
		value string
	}{
		{fieldFontFamily, settings.FontFamily},
		{fieldFontSize, strconv.Itoa(settings.FontSize)},
		{fieldFontColor, settings.FontColor},
		{fieldStrokeColor, settings.StrokeColor},
		{fieldStrokeWidth, strconv.Itoa(settings.StrokeWidth)},
		{fieldPosition, strconv.Itoa(settings.Position)},
		{fieldShadow, strconv.FormatBool(settings.Shadow)},
		{fieldMaxChars, strconv.Itoa(settings.MaxChars)},
		{fieldMaxDuration, strconv.FormatFloat(settings.MaxDuration, 'g', -1, 64)},
		{fieldMaxGap, strconv.FormatFloat(settings.MaxGap, 'g', -1, 64)},
	}
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return fmt.Errorf("write form field %s: %w", field.name, err)
		}
	}

	part, err := writer.CreateFormFile(fieldVideo, filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("create video form file: %w", err)
	}
	if _, err := io.Copy(part, video); err != nil {
		return fmt.Errorf("copy video payload: %w", err)
	}
	return nil
}

// JobStatus fetches the current status and progress for a job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (domain.JobStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jobURL(jobID, "status"), nil)
	if err != nil {
		return domain.JobStatusResponse{}, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return domain.JobStatusResponse{}, err
	}
	defer resp.Body.Close()

	var out domain.JobStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.JobStatusResponse{}, fmt.Errorf("decode status response: %w", err)
	}
	return out, nil
}

// ProbeDownload issues a header-only request against the download
// endpoint to confirm the output exists. Workaround for the service
// not supporting conditional requests on this route.
func (c *Client) ProbeDownload(ctx context.Context, jobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.jobURL(jobID, "download"), nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Download streams the captioned video into w and returns the filename
// suggested by the service, or a derived fallback.
func (c *Client) Download(ctx context.Context, jobID string, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jobURL(jobID, "download"), nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("stream download: %w", err)
	}
	return downloadFilename(resp.Header.Get("Content-Disposition"), jobID), nil
}

// Health checks service liveness.
func (c *Client) Health(ctx context.Context) (domain.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return domain.HealthResponse{}, fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return domain.HealthResponse{}, err
	}
	defer resp.Body.Close()

	var out domain.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.HealthResponse{}, fmt.Errorf("decode health response: %w", err)
	}
	return out, nil
}

// jobURL builds the URL for a job sub-resource.
func (c *Client) jobURL(jobID, suffix string) string {
	return c.baseURL + "/api/v1/jobs/" + url.PathEscape(jobID) + "/" + suffix
}

// downloadFilename extracts the attachment filename from a
// Content-Disposition header, falling back to a job-derived name.
func downloadFilename(disposition, jobID string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return filepath.Base(name)
			}
		}
	}
	return "captioned_" + jobID + ".mp4"
}
