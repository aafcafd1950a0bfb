package domain

// JobPhase tracks the client-side lifecycle of the single active job.
type JobPhase string

const (
	JobPhaseIdle      JobPhase = "idle"
	JobPhaseUploading JobPhase = "uploading"
	JobPhasePolling   JobPhase = "polling"
	JobPhaseCompleted JobPhase = "completed"
	JobPhaseFailed    JobPhase = "failed"
)

// Server-side status ids reported by the captioning service.
const (
	StatusNotStarted = 1
	StatusProcessing = 2
	StatusCompleted  = 3
	StatusFailed     = 4
)

// TerminalStatusID is the lowest status id at which polling must stop.
const TerminalStatusID = 4

// ProgressDone is the progress value at which the output is downloadable.
const ProgressDone = 100

// Job stores the identity and last observed state of the active job.
// The ID is issued by the server on upload and is opaque to the client.
type Job struct {
	ID       string   `json:"id"`
	Phase    JobPhase `json:"phase"`
	StatusID int      `json:"statusId"`
	Progress int      `json:"progress"`
}

// Terminal reports whether the server considers the job finished,
// successfully or not. Independent from Progress reaching 100.
func (j Job) Terminal() bool {
	return j.StatusID >= TerminalStatusID
}

// Ready reports whether the captioned output is available for download.
func (j Job) Ready() bool {
	return j.Progress >= ProgressDone
}

// VideoFile describes a user-selected upload candidate for display.
type VideoFile struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Subtitle position ids understood by the captioning service.
const (
	PositionBottom = 1
	PositionCenter = 2
	PositionTop    = 3
)

// SubtitleSettings contains the caption styling options sent with an
// upload. JSON names match the frontend form model; the multipart field
// names used on the wire live in the api package.
type SubtitleSettings struct {
	FontFamily  string  `json:"fontFamily"`
	FontSize    int     `json:"fontSize"`
	FontColor   string  `json:"fontColor"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth int     `json:"strokeWidth"`
	Position    int     `json:"position"`
	Shadow      bool    `json:"shadow"`
	MaxChars    int     `json:"maxChars"`
	MaxDuration float64 `json:"maxDuration"`
	MaxGap      float64 `json:"maxGap"`
}
