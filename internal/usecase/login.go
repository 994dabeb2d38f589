package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/user/course-harvester/internal/entity"
	"github.com/user/course-harvester/internal/repository"
	"github.com/user/course-harvester/pkg/metrics"
	"go.uber.org/zap"
)

// State is a position in the login sequence. States only ever advance by one.
type State int

const (
	StateInitial State = iota
	StateEntryLoaded
	StateLoginFormReached
	StateCredentialsSubmitted
	StateConsentCleared
	StateCoursesListed
	StateCourseEntered
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateEntryLoaded:
		return "entry_loaded"
	case StateLoginFormReached:
		return "login_form_reached"
	case StateCredentialsSubmitted:
		return "credentials_submitted"
	case StateConsentCleared:
		return "consent_cleared"
	case StateCoursesListed:
		return "courses_listed"
	case StateCourseEntered:
		return "course_entered"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const courseNamePrefix = "Course name\n"

// ConsentPrompt is a dialog shown after login that must be dismissed with one click.
type ConsentPrompt struct {
	Name     string
	Selector string
	Required bool
}

// Selectors locates the portal elements the session interacts with.
type Selectors struct {
	LoginMarker  string
	Username     string
	Password     string
	Submit       string
	Consent      []ConsentPrompt
	CourseLink   string
	ResourceLink string
	Icon         string
}

// DefaultSelectors matches the Moodle theme and single sign-on pages the tool was built for.
func DefaultSelectors() Selectors {
	return Selectors{
		LoginMarker: ".login",
		Username:    "#username",
		Password:    "#password",
		Submit:      "#formSubmit",
		Consent: []ConsentPrompt{
			{Name: "dont_trust_browser", Selector: "#dont-trust-browser-button"},
			{Name: "accept_terms", Selector: ".btn.btn-red[value=Accept]", Required: true},
		},
		CourseLink:   ".aalink.coursename:not(.mr-2)",
		ResourceLink: "a.aalink",
		Icon:         ":first-child",
	}
}

// SessionFlow walks a browser session from the portal landing page into a course.
type SessionFlow struct {
	session repository.BrowserSession
	sel     Selectors
	logger  *zap.Logger
	state   State
}

// NewSessionFlow creates a flow in StateInitial.
func NewSessionFlow(session repository.BrowserSession, sel Selectors, logger *zap.Logger) *SessionFlow {
	return &SessionFlow{
		session: session,
		sel:     sel,
		logger:  logger.Named("session"),
	}
}

// State returns the last state reached.
func (f *SessionFlow) State() State {
	return f.state
}

func (f *SessionFlow) advance(from State, step string, fn func() error) error {
	if f.state != from {
		return &StepError{State: f.state, Step: step, Err: ErrOutOfOrder}
	}

	start := time.Now()
	err := fn()
	metrics.StepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	if err != nil {
		f.logger.Error("Session step failed", zap.String("step", step), zap.Stringer("state", f.state), zap.Error(err))
		return &StepError{State: f.state, Step: step, Err: err}
	}

	f.state = from + 1
	f.logger.Info("Session step completed", zap.String("step", step), zap.Stringer("state", f.state))
	return nil
}

// EnterPortal loads the portal landing page.
func (f *SessionFlow) EnterPortal(ctx context.Context, entryURL string) error {
	return f.advance(StateInitial, "enter_portal", func() error {
		return f.session.Navigate(ctx, entryURL)
	})
}

// OpenLoginForm follows the last child of the login marker element.
func (f *SessionFlow) OpenLoginForm(ctx context.Context) error {
	return f.advance(StateEntryLoaded, "open_login_form", func() error {
		marker, err := f.session.Find(ctx, f.sel.LoginMarker)
		if err != nil {
			return fmt.Errorf("login marker %q: %w", f.sel.LoginMarker, err)
		}
		link, err := marker.LastChild(ctx)
		if err != nil {
			return fmt.Errorf("login link: %w", err)
		}
		return f.follow(ctx, link)
	})
}

// SubmitCredentials fills the login form and submits it as one input gesture.
func (f *SessionFlow) SubmitCredentials(ctx context.Context, username, secret string) error {
	return f.advance(StateLoginFormReached, "submit_credentials", func() error {
		user, err := f.session.Find(ctx, f.sel.Username)
		if err != nil {
			return fmt.Errorf("username field %q: %w", f.sel.Username, err)
		}
		pass, err := f.session.Find(ctx, f.sel.Password)
		if err != nil {
			return fmt.Errorf("password field %q: %w", f.sel.Password, err)
		}
		submit, err := f.session.Find(ctx, f.sel.Submit)
		if err != nil {
			return fmt.Errorf("submit control %q: %w", f.sel.Submit, err)
		}
		return f.session.Perform(ctx, []repository.InputAction{
			repository.TypeInto(user, username),
			repository.TypeInto(pass, secret),
			repository.ClickOn(submit),
		})
	})
}

// ClearConsent dismisses the post-login prompts in their configured order.
func (f *SessionFlow) ClearConsent(ctx context.Context) error {
	return f.advance(StateCredentialsSubmitted, "clear_consent", func() error {
		for _, prompt := range f.sel.Consent {
			el, err := f.session.Find(ctx, prompt.Selector)
			if errors.Is(err, repository.ErrElementNotFound) && !prompt.Required {
				f.logger.Debug("Optional prompt not shown", zap.String("prompt", prompt.Name))
				continue
			}
			if err != nil {
				return fmt.Errorf("consent prompt %s: %w", prompt.Name, err)
			}
			if err := el.Click(ctx); err != nil {
				return fmt.Errorf("dismiss %s: %w", prompt.Name, err)
			}
		}
		return nil
	})
}

// ListCourses enumerates the courses on the dashboard.
func (f *SessionFlow) ListCourses(ctx context.Context) ([]entity.CourseEntry, error) {
	var courses []entity.CourseEntry
	err := f.advance(StateConsentCleared, "list_courses", func() error {
		links, err := f.session.FindAll(ctx, f.sel.CourseLink)
		if err != nil {
			return fmt.Errorf("course links: %w", err)
		}
		if len(links) == 0 {
			return ErrNoCourses
		}
		for i, link := range links {
			text, err := link.Text(ctx)
			if err != nil {
				return fmt.Errorf("course %d name: %w", i, err)
			}
			href, _, err := link.Attribute(ctx, "href")
			if err != nil {
				return fmt.Errorf("course %d href: %w", i, err)
			}
			courses = append(courses, entity.CourseEntry{
				Index: i,
				Name:  strings.TrimSpace(strings.TrimPrefix(text, courseNamePrefix)),
				Href:  href,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// EnterCourse navigates into the chosen course.
func (f *SessionFlow) EnterCourse(ctx context.Context, course entity.CourseEntry) error {
	return f.advance(StateCoursesListed, "enter_course", func() error {
		if course.Href == "" {
			return fmt.Errorf("%w: course %q has no link", repository.ErrNavigationFailed, course.Name)
		}
		return f.session.Navigate(ctx, course.Href)
	})
}

func (f *SessionFlow) follow(ctx context.Context, link repository.Element) error {
	href, ok, err := link.Attribute(ctx, "href")
	if err != nil {
		return err
	}
	if !ok || href == "" {
		return fmt.Errorf("%w: link has no href", repository.ErrNavigationFailed)
	}
	return f.session.Navigate(ctx, href)
}
