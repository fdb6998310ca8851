package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name      string
	processed int
	err       error
	runs      int
}

func (s *stubJob) Name() string { return s.name }

func (s *stubJob) Run(context.Context) (int, error) {
	s.runs++
	return s.processed, s.err
}

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	a, b := &stubJob{name: "a"}, &stubJob{name: "b"}
	registry, err := NewRegistry(a, nil, b)
	require.NoError(t, err)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, a, jobs[0])
	assert.Same(t, b, jobs[1])

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry(&stubJob{name: "sweep"}, &stubJob{name: "sweep"})
	require.Error(t, err)
}
