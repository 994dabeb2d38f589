package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/course-harvester/internal/entity"
	"github.com/user/course-harvester/internal/repository"
)

type fakeElement struct {
	name     string
	attrs    map[string]string
	text     string
	children map[string]*fakeElement
	last     *fakeElement
	clicks   int
	clickErr error
}

func (e *fakeElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) Text(ctx context.Context) (string, error) {
	return e.text, nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	e.clicks++
	return e.clickErr
}

func (e *fakeElement) First(ctx context.Context, selector string) (repository.Element, error) {
	child, ok := e.children[selector]
	if !ok {
		return nil, repository.ErrElementNotFound
	}
	return child, nil
}

func (e *fakeElement) LastChild(ctx context.Context) (repository.Element, error) {
	if e.last == nil {
		return nil, repository.ErrElementNotFound
	}
	return e.last, nil
}

// anchor builds a resource anchor; an empty icon means the anchor has no child.
func anchor(href, icon string) *fakeElement {
	a := &fakeElement{attrs: map[string]string{}}
	if href != "" {
		a.attrs["href"] = href
	}
	if icon != "" {
		a.children = map[string]*fakeElement{
			":first-child": {attrs: map[string]string{"src": icon}},
		}
	}
	return a
}

type fakeSession struct {
	elements  map[string]*fakeElement
	lists     map[string][]*fakeElement
	findErr   error
	navigated []string
	performed [][]repository.InputAction
	tabs      []string
	tabErrs   map[string]error
	closed    bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		elements: map[string]*fakeElement{},
		lists:    map[string][]*fakeElement{},
		tabErrs:  map[string]error{},
	}
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *fakeSession) Find(ctx context.Context, selector string) (repository.Element, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	el, ok := s.elements[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrElementNotFound, selector)
	}
	return el, nil
}

func (s *fakeSession) FindAll(ctx context.Context, selector string) ([]repository.Element, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []repository.Element
	for _, el := range s.lists[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (s *fakeSession) Perform(ctx context.Context, actions []repository.InputAction) error {
	s.performed = append(s.performed, actions)
	return nil
}

func (s *fakeSession) OpenTab(ctx context.Context, url string) error {
	if err := s.tabErrs[url]; err != nil {
		return err
	}
	s.tabs = append(s.tabs, url)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

var errSession = errors.New("session lost")

type fakeOperator struct {
	lines    []string
	secrets  []string
	rejected []string
	shown    []entity.CourseEntry
}

func (o *fakeOperator) ReadLine(ctx context.Context, label string) (string, error) {
	if len(o.lines) == 0 {
		return "", errors.New("no more input")
	}
	line := o.lines[0]
	o.lines = o.lines[1:]
	return line, nil
}

func (o *fakeOperator) ReadSecret(ctx context.Context, label string) (string, error) {
	if len(o.secrets) == 0 {
		return "", errors.New("no more input")
	}
	s := o.secrets[0]
	o.secrets = o.secrets[1:]
	return s, nil
}

func (o *fakeOperator) Reject(message string) {
	o.rejected = append(o.rejected, message)
}

func (o *fakeOperator) ShowCourses(courses []entity.CourseEntry) {
	o.shown = courses
}

// scriptedSnapshots returns each snapshot in turn and repeats the last one.
type scriptedSnapshots struct {
	snaps []entity.DownloadSnapshot
	calls int
	err   error
}

func (s *scriptedSnapshots) Snapshot(ctx context.Context) (entity.DownloadSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls
	if i >= len(s.snaps) {
		i = len(s.snaps) - 1
	}
	s.calls++
	return s.snaps[i], nil
}

// growingSnapshots reports a file that grows on every poll.
type growingSnapshots struct {
	calls int
}

func (s *growingSnapshots) Snapshot(ctx context.Context) (entity.DownloadSnapshot, error) {
	s.calls++
	return entity.DownloadSnapshot{"lecture.pdf.crdownload": int64(s.calls * 1024)}, nil
}
