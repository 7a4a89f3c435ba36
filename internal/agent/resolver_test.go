package agent

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
)

// fakeRuntime is an in-memory container.Runtime for resolver tests.
type fakeRuntime struct {
	containers []container.Summary
}

func (f *fakeRuntime) Ping(context.Context) error { return nil }

func (f *fakeRuntime) CreateContainer(context.Context, container.CreateConfig) (string, error) {
	return "", nil
}

func (f *fakeRuntime) StartContainer(context.Context, string) error       { return nil }
func (f *fakeRuntime) StopContainer(context.Context, string, bool) error  { return nil }
func (f *fakeRuntime) RemoveContainer(context.Context, string) error      { return nil }
func (f *fakeRuntime) PullImage(context.Context, string) error            { return nil }
func (f *fakeRuntime) Close() error                                       { return nil }

func (f *fakeRuntime) Exec(context.Context, string, []string, container.ExecOptions) error {
	return nil
}

func (f *fakeRuntime) Logs(context.Context, string, container.LogOptions) (io.ReadCloser, error) {
	return nil, nil
}

func (f *fakeRuntime) ListContainers(context.Context) ([]container.Summary, error) {
	return f.containers, nil
}

func (f *fakeRuntime) Inspect(_ context.Context, ref string) (*container.Details, error) {
	for _, c := range f.containers {
		if c.ID == ref || c.Name == ref {
			return &container.Details{Name: c.Name, State: c.State}, nil
		}
	}
	return nil, container.ErrNotFound
}

func TestComputeLiveStatusNoReference(t *testing.T) {
	rt := &fakeRuntime{}

	// Persisted status must not leak through.
	for _, persisted := range []Status{StatusCreated, StatusRunning, StatusStopped, StatusError} {
		a := &Agent{Name: "alice", Status: persisted}
		status, err := a.ComputeLiveStatus(context.Background(), rt)
		require.NoError(t, err)
		assert.Equal(t, StatusCreated, status)
	}
}

func TestComputeLiveStatusRunning(t *testing.T) {
	rt := &fakeRuntime{containers: []container.Summary{
		{ID: "abc123", Name: "crowdcontrol-alice", State: "running"},
	}}
	a := &Agent{Name: "alice", ContainerID: "abc123"}

	status, err := a.ComputeLiveStatus(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
}

func TestComputeLiveStatusStaleReference(t *testing.T) {
	// The stored ID resolves to a container that belongs to another
	// agent: the reference is stale, the agent is merely Created.
	rt := &fakeRuntime{containers: []container.Summary{
		{ID: "abc123", Name: "crowdcontrol-bob", State: "running"},
	}}
	a := &Agent{Name: "alice", ContainerID: "abc123"}

	status, err := a.ComputeLiveStatus(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, status)
}

func TestComputeLiveStatusDeletedContainer(t *testing.T) {
	rt := &fakeRuntime{}
	a := &Agent{Name: "alice", ContainerID: "abc123"}

	status, err := a.ComputeLiveStatus(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, status)
}

func TestComputeLiveStatusStateTranslation(t *testing.T) {
	cases := map[string]Status{
		"created":    StatusCreated,
		"running":    StatusRunning,
		"exited":     StatusStopped,
		"dead":       StatusError,
		"removing":   StatusError,
		"paused":     StatusStopped, // conservative default
		"restarting": StatusStopped,
	}
	for state, want := range cases {
		rt := &fakeRuntime{containers: []container.Summary{
			{ID: "abc123", Name: "crowdcontrol-alice", State: state},
		}}
		a := &Agent{Name: "alice", ContainerID: "abc123"}

		status, err := a.ComputeLiveStatus(context.Background(), rt)
		require.NoError(t, err, "state %q", state)
		assert.Equal(t, want, status, "state %q", state)
	}
}

func TestValidateContainerID(t *testing.T) {
	rt := &fakeRuntime{containers: []container.Summary{
		{ID: "abc123", Name: "crowdcontrol-alice", State: "running"},
	}}

	ok, err := ValidateContainerID(context.Background(), rt, "alice", "abc123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ValidateContainerID(context.Background(), rt, "bob", "abc123")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ValidateContainerID(context.Background(), rt, "alice", "gone")
	require.NoError(t, err)
	assert.False(t, ok)
}
