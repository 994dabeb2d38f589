package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/course-harvester/internal/entity"
	xterm "golang.org/x/term"
)

func TestReadLine(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader("https://moodle.example.edu\r\nalice\n"), &out)

	got, err := term.ReadLine(context.Background(), "Enter moodle link: ")
	require.NoError(t, err)
	assert.Equal(t, "https://moodle.example.edu", got)

	got, err = term.ReadLine(context.Background(), "Enter username: ")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	assert.Equal(t, "Enter moodle link: Enter username: ", out.String())
}

func TestReadLineLastLineWithoutNewline(t *testing.T) {
	term := New(strings.NewReader("3"), io.Discard)

	got, err := term.ReadLine(context.Background(), "Choose course: ")
	require.NoError(t, err)
	assert.Equal(t, "3", got)

	_, err = term.ReadLine(context.Background(), "Choose course: ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadSecretWithoutTTY(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader("hunter2\n"), &out)

	got, err := term.ReadSecret(context.Background(), "Enter password: ")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
	assert.Equal(t, "Enter password: ", out.String())
}

func TestReadLineCanceled(t *testing.T) {
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close() })
	term := New(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := term.ReadLine(ctx, "Enter username: ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRejectAndShowCourses(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader(""), &out)

	term.ShowCourses([]entity.CourseEntry{
		{Index: 0, Name: "CSC 116 Intro to Java"},
		{Index: 1, Name: "MA 241 Calculus II"},
	})
	term.Reject("Couldn't parse, try again!")

	s := out.String()
	assert.Contains(t, s, "CSC 116 Intro to Java")
	assert.Contains(t, s, "MA 241 Calculus II")
	assert.True(t, strings.HasSuffix(s, "Couldn't parse, try again!\n"))
	assert.NotContains(t, s, "\x1b[")
}

func TestReadSecretCanceledRestoresTerminal(t *testing.T) {
	saved := &xterm.State{}
	var restored *xterm.State
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	tm := New(strings.NewReader(""), io.Discard)
	tm.fd = 7
	tm.getState = func(fd int) (*xterm.State, error) { return saved, nil }
	tm.restore = func(fd int, s *xterm.State) error {
		assert.Equal(t, 7, fd)
		restored = s
		return nil
	}
	tm.readPassword = func(fd int) ([]byte, error) {
		<-block
		return nil, io.EOF
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tm.ReadSecret(ctx, "Enter password: ")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Same(t, saved, restored)
}

func TestReadSecretFromTTY(t *testing.T) {
	restoreCalls := 0
	tm := New(strings.NewReader(""), io.Discard)
	tm.fd = 7
	tm.getState = func(fd int) (*xterm.State, error) { return &xterm.State{}, nil }
	tm.restore = func(fd int, s *xterm.State) error {
		restoreCalls++
		return nil
	}
	tm.readPassword = func(fd int) ([]byte, error) { return []byte("hunter2"), nil }

	got, err := tm.ReadSecret(context.Background(), "Enter password: ")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
	assert.Zero(t, restoreCalls)
}
