package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/user/course-harvester/internal/delivery/http/response"
	"github.com/user/course-harvester/internal/entity"
	"go.uber.org/zap"
)

// StatusProvider exposes the state of the current run.
type StatusProvider interface {
	Status() entity.RunStatus
}

type Handler struct {
	progress StatusProvider
	logger   *zap.Logger
}

func NewHandler(progress StatusProvider, logger *zap.Logger) *Handler {
	return &Handler{
		progress: progress,
		logger:   logger,
	}
}

func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	s := h.progress.Status()
	resp := response.RunStatusResponse{
		RunID:         s.RunID,
		State:         s.State,
		StartedAt:     s.StartedAt,
		Uptime:        time.Since(s.StartedAt).Round(time.Second).String(),
		Course:        s.Course,
		CoursesFound:  s.CoursesFound,
		LinksQueued:   s.LinksQueued,
		TabsOpened:    s.TabsOpened,
		Polls:         s.Polls,
		DownloadBytes: s.DownloadBytes,
		FailureReason: s.FailureReason,
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}
