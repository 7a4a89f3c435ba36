// Package validator sweeps the whole system for divergence between the
// metadata store and the container runtime, and repairs what can be
// repaired without destructive judgment calls.
package validator

import (
	"fmt"
	"strings"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

// Inconsistency is one detected divergence between stored metadata and
// observed runtime state. The set of kinds is closed: the unexported
// marker method keeps implementations inside this package, and both the
// repair and reporting switches fail loudly on an unknown kind.
type Inconsistency interface {
	fmt.Stringer
	isInconsistency()
}

// MissingWorkspace: metadata exists but the workspace directory is gone.
type MissingWorkspace struct {
	Agent string
}

func (MissingWorkspace) isInconsistency() {}

func (i MissingWorkspace) String() string {
	return fmt.Sprintf("missing workspace directory for agent %q", i.Agent)
}

// OrphanedContainer: a crowdcontrol container exists with no metadata.
type OrphanedContainer struct {
	// Container is the orphan's name with the crowdcontrol prefix
	// stripped.
	Container string
}

func (OrphanedContainer) isInconsistency() {}

func (i OrphanedContainer) String() string {
	return fmt.Sprintf("orphaned container %q has no metadata", name.Container(i.Container))
}

// MissingContainer: metadata references a container that doesn't exist.
type MissingContainer struct {
	Agent string
}

func (MissingContainer) isInconsistency() {}

func (i MissingContainer) String() string {
	return fmt.Sprintf("agent %q references a container that doesn't exist", i.Agent)
}

// IncorrectStatus: the recorded start/stop intent disagrees with the
// observed container state.
type IncorrectStatus struct {
	Agent    string
	Expected agent.Status
	Actual   agent.Status
}

func (IncorrectStatus) isInconsistency() {}

func (i IncorrectStatus) String() string {
	return fmt.Sprintf("agent %q status mismatch: expected %s but container is %s",
		i.Agent, i.Expected, i.Actual)
}

// ContainerIDMismatch: the stored container ID differs from the actual
// container's ID.
type ContainerIDMismatch struct {
	Agent    string
	StoredID string
	ActualID string
}

func (ContainerIDMismatch) isInconsistency() {}

func (i ContainerIDMismatch) String() string {
	return fmt.Sprintf("agent %q container ID mismatch: stored %s, actual %s",
		i.Agent, shortID(i.StoredID), shortID(i.ActualID))
}

// DuplicateContainers: more than one container matches the agent's name.
type DuplicateContainers struct {
	Agent        string
	ContainerIDs []string
}

func (DuplicateContainers) isInconsistency() {}

func (i DuplicateContainers) String() string {
	ids := make([]string, len(i.ContainerIDs))
	for j, id := range i.ContainerIDs {
		ids[j] = shortID(id)
	}
	return fmt.Sprintf("multiple containers found for agent %q: %s", i.Agent, strings.Join(ids, ", "))
}

// CorruptedMetadata: the agent's metadata file cannot be parsed.
type CorruptedMetadata struct {
	Agent string
	Err   string
}

func (CorruptedMetadata) isInconsistency() {}

func (i CorruptedMetadata) String() string {
	return fmt.Sprintf("corrupted metadata for agent %q: %s", i.Agent, i.Err)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
