package entity

import "time"

// RunStatus is a point-in-time view of a retrieval run.
type RunStatus struct {
	RunID         string    `json:"run_id"`
	State         string    `json:"state"`
	StartedAt     time.Time `json:"started_at"`
	Course        string    `json:"course,omitempty"`
	CoursesFound  int       `json:"courses_found"`
	LinksQueued   int       `json:"links_queued"`
	TabsOpened    int       `json:"tabs_opened"`
	Polls         int       `json:"polls"`
	DownloadBytes int64     `json:"download_bytes"`
	FailureReason string    `json:"failure_reason,omitempty"`
}
