package domain

import "time"

// UploadResponse is the body returned by the upload endpoint.
type UploadResponse struct {
	JobID     string `json:"job_id"`
	Msg       string `json:"msg"`
	StatusURL string `json:"status_url"`
}

// JobStatusResponse is the body returned by the status endpoint.
type JobStatusResponse struct {
	JobID       string     `json:"job_id"`
	StatusName  string     `json:"status_name"`
	StatusID    int        `json:"status_id"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
}

// HealthResponse is the body returned by the service health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
