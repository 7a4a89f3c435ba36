// Package container provides the Docker runtime collaborator. Docker is
// the sole authority for agent execution state; everything here is a
// thin pass-through to the daemon.
package container

import (
	"context"
	"errors"
	"io"
	"time"
)

// Label identifies containers managed by crowdcontrol.
const (
	LabelKey   = "app"
	LabelValue = "crowdcontrol"
)

// ErrNotFound is returned by Inspect when the reference does not
// resolve to any container.
var ErrNotFound = errors.New("container not found")

// Runtime is the interface for container runtime operations.
type Runtime interface {
	// Ping verifies the runtime is accessible.
	Ping(ctx context.Context) error

	// CreateContainer creates a new container without starting it.
	// Returns the container ID.
	CreateContainer(ctx context.Context, cfg CreateConfig) (string, error)

	// StartContainer starts an existing container.
	StartContainer(ctx context.Context, ref string) error

	// StopContainer stops a running container. Force kills immediately
	// instead of waiting for graceful shutdown.
	StopContainer(ctx context.Context, ref string, force bool) error

	// RemoveContainer removes a container. Removing a container that is
	// already gone is not an error.
	RemoveContainer(ctx context.Context, ref string) error

	// Exec runs a command inside a running container.
	Exec(ctx context.Context, ref string, cmd []string, opts ExecOptions) error

	// Logs returns a reader over the container's log stream. The stream
	// is multiplexed in Docker's format unless the container runs a TTY;
	// use stdcopy to demux.
	Logs(ctx context.Context, ref string, opts LogOptions) (io.ReadCloser, error)

	// ListContainers returns all crowdcontrol-labeled containers,
	// running and stopped.
	ListContainers(ctx context.Context) ([]Summary, error)

	// Inspect returns the declared name and state for a reference, or
	// ErrNotFound.
	Inspect(ctx context.Context, ref string) (*Details, error)

	// PullImage ensures an image is available locally.
	PullImage(ctx context.Context, imageName string) error

	// Close releases runtime resources.
	Close() error
}

// CreateConfig holds configuration for creating an agent container.
type CreateConfig struct {
	Name          string // container name, including the crowdcontrol prefix
	Image         string
	WorkspacePath string // host path bind-mounted at /workspace
	Memory        string // memory limit such as "2g", empty for none
	CPUs          string // CPU limit such as "1.5", empty for none
}

// ExecOptions configures command execution inside a container.
type ExecOptions struct {
	Attach bool      // stream input/output instead of fire-and-forget
	TTY    bool      // allocate a pseudo-terminal
	User   string    // user to run as, empty for the container default
	Stdin  io.Reader // used when Attach is set
	Stdout io.Writer
	Stderr io.Writer
}

// LogOptions configures log retrieval.
type LogOptions struct {
	Follow     bool
	Tail       string // number of lines from the end, empty for all
	Timestamps bool
}

// Summary describes one container from a listing.
type Summary struct {
	ID      string
	Name    string // without the leading slash
	State   string // "running", "exited", "created", ...
	Created time.Time
}

// Details holds the identity and state of an inspected container.
type Details struct {
	Name  string // without the leading slash
	State string
}
