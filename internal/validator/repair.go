package validator

import (
	"context"
	"fmt"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

// RepairResult reports the outcome for one inconsistency.
type RepairResult struct {
	Inconsistency Inconsistency
	Repaired      bool
	Message       string
	Err           error
}

// Repair attempts to fix the auto-repairable inconsistency kinds by
// rewriting records to match observed runtime state. MissingWorkspace,
// OrphanedContainer, DuplicateContainers, and CorruptedMetadata require
// a destructive or ambiguous judgment call, so they are surfaced for
// manual action instead.
//
// Repairs are idempotent per inconsistency but not transactional across
// them: a crash mid-repair is recovered by running repair again.
func (v *Validator) Repair(ctx context.Context, inconsistencies []Inconsistency) ([]RepairResult, error) {
	// One listing up front so running containers can be adopted by ID.
	containers, err := v.runtime.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
	}
	byName := make(map[string]container.Summary, len(containers))
	for _, c := range containers {
		byName[c.Name] = c
	}

	results := make([]RepairResult, 0, len(inconsistencies))
	for _, inc := range inconsistencies {
		results = append(results, v.repairOne(inc, byName))
	}
	return results, nil
}

func (v *Validator) repairOne(inc Inconsistency, byName map[string]container.Summary) RepairResult {
	res := RepairResult{Inconsistency: inc}

	switch i := inc.(type) {
	case MissingContainer:
		_, err := v.store.Update(i.Agent, func(a *agent.Agent) error {
			a.ContainerID = ""
			return nil
		})
		if err != nil {
			res.Err = err
			return res
		}
		res.Repaired = true
		res.Message = "cleared dangling container reference"
		log.Info("repaired missing container", "agent", i.Agent)

	case IncorrectStatus:
		_, err := v.store.Update(i.Agent, func(a *agent.Agent) error {
			if i.Actual == agent.StatusRunning {
				// Adopt the running container.
				c, ok := byName[name.Container(i.Agent)]
				if !ok {
					return fmt.Errorf("container for agent %q disappeared during repair", i.Agent)
				}
				a.ContainerID = c.ID
			} else {
				a.ContainerID = ""
			}
			return nil
		})
		if err != nil {
			res.Err = err
			return res
		}
		res.Repaired = true
		res.Message = fmt.Sprintf("record updated to match container state (%s)", i.Actual)
		log.Info("repaired status mismatch", "agent", i.Agent, "actual", i.Actual)

	case ContainerIDMismatch:
		// A non-empty reference declares "expected running", so the
		// actual ID is only adopted while the container is running.
		// Adopting a stopped container's ID would leave a record a
		// later sweep flags as a status mismatch.
		c, running := byName[name.Container(i.Agent)]
		running = running && c.State == "running"
		_, err := v.store.Update(i.Agent, func(a *agent.Agent) error {
			if running {
				a.ContainerID = i.ActualID
			} else {
				a.ContainerID = ""
			}
			return nil
		})
		if err != nil {
			res.Err = err
			return res
		}
		res.Repaired = true
		if running {
			res.Message = "adopted actual container ID"
			log.Info("repaired container ID mismatch", "agent", i.Agent, "container_id", i.ActualID)
		} else {
			res.Message = "cleared stale container reference"
			log.Info("repaired container ID mismatch", "agent", i.Agent)
		}

	case MissingWorkspace:
		res.Message = "workspace directory is missing; remove the agent or restore the directory"

	case OrphanedContainer:
		res.Message = fmt.Sprintf("remove container %q manually or register the agent",
			name.Container(i.Container))

	case DuplicateContainers:
		res.Message = "remove the duplicate containers manually"

	case CorruptedMetadata:
		res.Message = "metadata is unparseable; remove and re-create the agent"

	default:
		// A new inconsistency kind must be handled here explicitly.
		res.Err = fmt.Errorf("unhandled inconsistency kind %T", inc)
	}

	return res
}
