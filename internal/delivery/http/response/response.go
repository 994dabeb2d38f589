package response

import "time"

// RunStatusResponse is a DTO for the run status, mirroring entity.RunStatus
type RunStatusResponse struct {
	RunID         string    `json:"run_id"`
	State         string    `json:"state"`
	StartedAt     time.Time `json:"started_at"`
	Uptime        string    `json:"uptime"`
	Course        string    `json:"course,omitempty"`
	CoursesFound  int       `json:"courses_found"`
	LinksQueued   int       `json:"links_queued"`
	TabsOpened    int       `json:"tabs_opened"`
	Polls         int       `json:"polls"`
	DownloadBytes int64     `json:"download_bytes"`
	FailureReason string    `json:"failure_reason,omitempty"`
}
