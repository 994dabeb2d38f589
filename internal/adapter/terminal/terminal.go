package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/user/course-harvester/internal/entity"
	"github.com/user/course-harvester/internal/repository"
	"golang.org/x/term"
)

// Terminal is the Operator attached to a line-oriented console.
type Terminal struct {
	in    *bufio.Reader
	out   io.Writer
	fd    int
	color bool

	getState     func(fd int) (*term.State, error)
	restore      func(fd int, state *term.State) error
	readPassword func(fd int) ([]byte, error)
}

var _ repository.Operator = (*Terminal)(nil)

// New returns a Terminal reading lines from in and writing prompts to out. Secrets are
// read like ordinary lines.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:           bufio.NewReader(in),
		out:          out,
		fd:           -1,
		getState:     term.GetState,
		restore:      term.Restore,
		readPassword: term.ReadPassword,
	}
}

// NewStdio returns a Terminal on the process's standard streams. When stdin is a TTY,
// secrets are read without echo and prompts are colored.
func NewStdio() *Terminal {
	t := New(os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		t.fd = fd
		t.color = true
	}
	return t
}

func (t *Terminal) paint(c text.Colors, s string) string {
	if !t.color {
		return s
	}
	return c.Sprint(s)
}

func (t *Terminal) ReadLine(ctx context.Context, label string) (string, error) {
	fmt.Fprint(t.out, t.paint(text.Colors{text.FgYellow}, label))
	return await(ctx, t.readLine)
}

func (t *Terminal) ReadSecret(ctx context.Context, label string) (string, error) {
	fmt.Fprint(t.out, t.paint(text.Colors{text.FgYellow}, label))
	if t.fd < 0 {
		return await(ctx, t.readLine)
	}
	// An abandoned read never gets to switch echo back on.
	state, err := t.getState(t.fd)
	if err != nil {
		return "", fmt.Errorf("save terminal state: %w", err)
	}
	secret, err := await(ctx, func() (string, error) {
		b, err := t.readPassword(t.fd)
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	})
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		if rerr := t.restore(t.fd, state); rerr != nil {
			return "", errors.Join(err, fmt.Errorf("restore terminal state: %w", rerr))
		}
	}
	return secret, err
}

func (t *Terminal) Reject(message string) {
	fmt.Fprintln(t.out, t.paint(text.Colors{text.FgRed}, message))
}

func (t *Terminal) ShowCourses(courses []entity.CourseEntry) {
	tw := table.NewWriter()
	tw.SetOutputMirror(t.out)
	tw.AppendHeader(table.Row{"#", "Course"})
	for _, c := range courses {
		tw.AppendRow(table.Row{strconv.Itoa(c.Index), c.Name})
	}
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// await runs a blocking read and gives up when ctx ends. An abandoned read finishes in
// the background and its result is discarded.
func await(ctx context.Context, read func() (string, error)) (string, error) {
	type result struct {
		s   string
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := read()
		done <- result{s, err}
	}()
	select {
	case r := <-done:
		return r.s, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
