package agent

import (
	"context"
	"errors"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

// ComputeLiveStatus derives the agent's authoritative status from the
// container runtime. It is a pure read: nothing is cached or persisted,
// and the persisted status field never influences the result.
//
// A stored container ID that no longer resolves to a container named
// for this agent is stale, and the agent reports as Created. Clearing
// the stale ID is repair's job, not this function's.
func (a *Agent) ComputeLiveStatus(ctx context.Context, rt container.Runtime) (Status, error) {
	if a.ContainerID == "" {
		return StatusCreated, nil
	}

	valid, err := ValidateContainerID(ctx, rt, a.Name, a.ContainerID)
	if err != nil {
		return StatusError, err
	}
	if !valid {
		log.Debug("stale container reference", "agent", a.Name, "container_id", a.ContainerID)
		return StatusCreated, nil
	}

	// Identity confirmed; query by the expected name rather than the
	// stored reference.
	return LiveStatusByName(ctx, rt, a.Name)
}

// ValidateContainerID reports whether ref resolves to a container whose
// declared name is the one expected for agentName.
func ValidateContainerID(ctx context.Context, rt container.Runtime, agentName, ref string) (bool, error) {
	details, err := rt.Inspect(ctx, ref)
	if err != nil {
		if errors.Is(err, container.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return details.Name == name.Container(agentName), nil
}

// LiveStatusByName queries the runtime for the agent's container by its
// expected name and translates the container state. A missing container
// means the agent is merely Created.
func LiveStatusByName(ctx context.Context, rt container.Runtime, agentName string) (Status, error) {
	details, err := rt.Inspect(ctx, name.Container(agentName))
	if err != nil {
		if errors.Is(err, container.ErrNotFound) {
			return StatusCreated, nil
		}
		return StatusError, err
	}
	return StatusFromContainerState(details.State), nil
}
