package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/course-harvester/internal/entity"
	"go.uber.org/zap"
)

func TestDispatchOpensInOrder(t *testing.T) {
	s := newFakeSession()
	d := NewDispatcher(s, zap.NewNop())

	n, err := d.Dispatch(context.Background(), []entity.ResourceLink{{Href: "A"}, {Href: "C"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"A", "C"}, s.tabs)
}

func TestDispatchAbortsOnFirstFailure(t *testing.T) {
	s := newFakeSession()
	s.tabErrs["A"] = errSession
	d := NewDispatcher(s, zap.NewNop())

	n, err := d.Dispatch(context.Background(), []entity.ResourceLink{{Href: "A"}, {Href: "C"}})
	assert.ErrorIs(t, err, errSession)
	assert.Zero(t, n)
	assert.Empty(t, s.tabs)
}

func TestDispatchReportsPartialProgress(t *testing.T) {
	s := newFakeSession()
	s.tabErrs["C"] = errSession
	d := NewDispatcher(s, zap.NewNop())
	var opened []string
	d.onOpen = func(l entity.ResourceLink) { opened = append(opened, l.Href) }

	n, err := d.Dispatch(context.Background(), []entity.ResourceLink{{Href: "A"}, {Href: "C"}, {Href: "E"}})
	assert.ErrorIs(t, err, errSession)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"A"}, opened)
	assert.Equal(t, []string{"A"}, s.tabs)
}

func TestDispatchNothing(t *testing.T) {
	s := newFakeSession()
	n, err := NewDispatcher(s, zap.NewNop()).Dispatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
