// Package agent defines the agent record and its durable metadata store.
//
// An agent is a named development environment bound to one container.
// The store is authoritative for identity and configuration only; the
// container runtime is authoritative for execution state. The persisted
// status field is never trusted: every load normalizes it to
// StatusCreated, and live status always comes from ComputeLiveStatus.
package agent

import (
	"errors"
	"fmt"
	"time"
)

// Status is an agent's execution status as derived from the runtime.
type Status string

const (
	StatusCreated Status = "created"
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusError   Status = "error"
)

// StatusFromContainerState translates a Docker container state into an
// agent status. Unknown or transitional states map to Stopped.
func StatusFromContainerState(state string) Status {
	switch state {
	case "created":
		return StatusCreated
	case "running":
		return StatusRunning
	case "exited":
		return StatusStopped
	case "dead", "removing":
		return StatusError
	default:
		return StatusStopped
	}
}

// Agent is the persisted record for one agent.
type Agent struct {
	Name string `json:"name"`

	// Status is persisted for readability only. It is normalized to
	// StatusCreated on every load and must never be read as ground truth.
	Status Status `json:"status"`

	// ContainerID is the container the agent was last started with.
	// Empty when the agent has no live container. A stale value (one
	// that no longer resolves to this agent's container) is treated as
	// absent by every consumer.
	ContainerID string `json:"container_id,omitempty"`

	Repository    string    `json:"repository"`
	Branch        string    `json:"branch,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	WorkspacePath string    `json:"workspace_path"`
}

// ErrNotFound is returned when no record exists for an agent name.
var ErrNotFound = errors.New("agent not found")

// CorruptedError indicates a metadata file exists but cannot be parsed.
type CorruptedError struct {
	Name string
	Err  error
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("corrupted metadata for agent %q: %v", e.Name, e.Err)
}

func (e *CorruptedError) Unwrap() error { return e.Err }
