package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/course-harvester/internal/entity"
)

// Progress tracks one run for readers on other goroutines.
type Progress struct {
	mu     sync.RWMutex
	status entity.RunStatus
}

// NewProgress starts tracking a new run with a fresh id.
func NewProgress() *Progress {
	return &Progress{
		status: entity.RunStatus{
			RunID:     uuid.NewString(),
			State:     StateInitial.String(),
			StartedAt: time.Now(),
		},
	}
}

// RunID returns the id of the tracked run.
func (p *Progress) RunID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.RunID
}

// Status returns a copy of the current status.
func (p *Progress) Status() entity.RunStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Progress) update(fn func(s *entity.RunStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.status)
}

func (p *Progress) setState(state string) {
	p.update(func(s *entity.RunStatus) { s.State = state })
}
