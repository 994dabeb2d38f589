package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/course-harvester/internal/entity"
	"github.com/user/course-harvester/internal/repository"
	"go.uber.org/zap"
)

const (
	stateHarvesting  = "harvesting"
	stateDispatching = "dispatching"
	stateWaiting     = "waiting_for_downloads"
	stateDone        = "done"
	stateFailed      = "failed"
)

// RetrievalOptions configures a Retrieval.
type RetrievalOptions struct {
	Selectors         Selectors
	SelectionAttempts int
	Convergence       ConvergenceOptions
}

// Retrieval runs one complete session: login, course selection, harvest, dispatch and
// the wait for downloads to settle.
type Retrieval struct {
	session    repository.BrowserSession
	operator   repository.Operator
	classifier *Classifier
	snapshots  repository.SnapshotSource
	opts       RetrievalOptions
	progress   *Progress
	logger     *zap.Logger
}

// NewRetrieval wires the run's collaborators. progress may be shared with a status endpoint.
func NewRetrieval(
	session repository.BrowserSession,
	operator repository.Operator,
	classifier *Classifier,
	snapshots repository.SnapshotSource,
	opts RetrievalOptions,
	progress *Progress,
	logger *zap.Logger,
) *Retrieval {
	return &Retrieval{
		session:    session,
		operator:   operator,
		classifier: classifier,
		snapshots:  snapshots,
		opts:       opts,
		progress:   progress,
		logger:     logger.With(zap.String("run_id", progress.RunID())),
	}
}

// Run executes the run against entryURL. It does not close the session.
func (r *Retrieval) Run(ctx context.Context, entryURL string) error {
	err := r.run(ctx, entryURL)
	if err != nil {
		r.progress.update(func(s *entity.RunStatus) {
			s.State = stateFailed
			s.FailureReason = err.Error()
		})
		return err
	}
	r.progress.setState(stateDone)
	return nil
}

func (r *Retrieval) run(ctx context.Context, entryURL string) error {
	flow := NewSessionFlow(r.session, r.opts.Selectors, r.logger)
	step := func(err error) error {
		if err == nil {
			r.progress.setState(flow.State().String())
		}
		return err
	}

	r.logger.Info("Starting retrieval", zap.String("url", entryURL))
	if err := step(flow.EnterPortal(ctx, entryURL)); err != nil {
		return err
	}
	if err := step(flow.OpenLoginForm(ctx)); err != nil {
		return err
	}

	username, err := r.operator.ReadLine(ctx, "Enter username: ")
	if err != nil {
		return fmt.Errorf("read username: %w", err)
	}
	secret, err := r.operator.ReadSecret(ctx, "Enter password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if err := step(flow.SubmitCredentials(ctx, username, secret)); err != nil {
		return err
	}
	if err := step(flow.ClearConsent(ctx)); err != nil {
		return err
	}

	courses, err := flow.ListCourses(ctx)
	if err := step(err); err != nil {
		return err
	}
	r.progress.update(func(s *entity.RunStatus) { s.CoursesFound = len(courses) })
	r.operator.ShowCourses(courses)

	course, err := SelectCourse(ctx, r.operator, courses, r.opts.SelectionAttempts)
	if err != nil {
		return err
	}
	r.progress.update(func(s *entity.RunStatus) { s.Course = course.Name })
	if err := step(flow.EnterCourse(ctx, course)); err != nil {
		return err
	}

	r.progress.setState(stateHarvesting)
	harvester := NewLinkHarvester(r.session, r.classifier, r.opts.Selectors, r.logger)
	links, err := Collect(harvester.Harvest(ctx))
	if err != nil {
		return fmt.Errorf("harvest course %q: %w", course.Name, err)
	}
	r.progress.update(func(s *entity.RunStatus) { s.LinksQueued = len(links) })
	r.logger.Info("Harvested resource links", zap.String("course", course.Name), zap.Int("links", len(links)))
	if len(links) == 0 {
		r.logger.Warn("Course has no downloadable resources", zap.String("course", course.Name))
		return nil
	}

	r.progress.setState(stateDispatching)
	dispatcher := NewDispatcher(r.session, r.logger)
	dispatcher.onOpen = func(entity.ResourceLink) {
		r.progress.update(func(s *entity.RunStatus) { s.TabsOpened++ })
	}
	if _, err := dispatcher.Dispatch(ctx, links); err != nil {
		return err
	}

	r.progress.setState(stateWaiting)
	detector := NewConvergenceDetector(r.snapshots, r.opts.Convergence, r.logger)
	detector.onPoll = func(polls int, snap entity.DownloadSnapshot) {
		r.progress.update(func(s *entity.RunStatus) {
			s.Polls = polls
			s.DownloadBytes = snap.TotalBytes()
		})
	}
	if err := detector.WaitForIdle(ctx); err != nil {
		if errors.Is(err, ErrNotConverged) {
			r.logger.Warn("Stopped waiting for downloads", zap.Error(err))
		}
		return err
	}

	r.logger.Info("Retrieval finished", zap.String("course", course.Name), zap.Int("downloads", len(links)))
	return nil
}
