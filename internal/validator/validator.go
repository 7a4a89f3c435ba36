package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

// ErrRuntimeUnavailable means the container runtime could not be
// listed at all; the sweep aborts rather than guessing.
var ErrRuntimeUnavailable = errors.New("container runtime unavailable")

// maxConcurrentChecks bounds per-agent check parallelism during a sweep.
const maxConcurrentChecks = 8

// Validator compares every stored record against the runtime's
// containers and reports typed inconsistencies.
type Validator struct {
	store   *agent.Store
	runtime container.Runtime
}

// New creates a validator over the given store and runtime.
func New(store *agent.Store, rt container.Runtime) *Validator {
	return &Validator{store: store, runtime: rt}
}

// ValidateAll sweeps the whole system. It issues one runtime listing;
// per-agent checks then run concurrently against that snapshot. A
// corrupted record isolates only that agent's checks. The result order
// is deterministic (agents sorted by name, orphans last), so repeated
// sweeps over unchanged state compare equal.
func (v *Validator) ValidateAll(ctx context.Context) ([]Inconsistency, error) {
	log.Debug("starting state validation")

	agentNames, err := v.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	sort.Strings(agentNames)

	containers, err := v.runtime.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
	}

	perAgent := make([][]Inconsistency, len(agentNames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for i, agentName := range agentNames {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			perAgent[i] = v.validateAgent(agentName, containers)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var inconsistencies []Inconsistency
	for _, issues := range perAgent {
		inconsistencies = append(inconsistencies, issues...)
	}

	// Containers with no corresponding record are orphans.
	known := make(map[string]bool, len(agentNames))
	for _, n := range agentNames {
		known[n] = true
	}
	var orphans []string
	for _, c := range containers {
		agentName := name.Agent(c.Name)
		if agentName == "" || known[agentName] {
			continue
		}
		orphans = append(orphans, agentName)
	}
	sort.Strings(orphans)
	for _, o := range orphans {
		inconsistencies = append(inconsistencies, OrphanedContainer{Container: o})
	}

	log.Debug("state validation finished",
		"agents", len(agentNames), "inconsistencies", len(inconsistencies))
	return inconsistencies, nil
}

// validateAgent runs all checks for one agent against the container
// snapshot. It never fails: a load error becomes CorruptedMetadata and
// ends that agent's checks.
func (v *Validator) validateAgent(agentName string, containers []container.Summary) []Inconsistency {
	a, err := v.store.Load(agentName)
	if err != nil {
		return []Inconsistency{CorruptedMetadata{Agent: agentName, Err: err.Error()}}
	}

	var issues []Inconsistency

	if _, err := os.Stat(a.WorkspacePath); err != nil {
		issues = append(issues, MissingWorkspace{Agent: agentName})
	}

	expectedName := name.Container(agentName)
	var found *container.Summary
	var matchingIDs []string
	for i, c := range containers {
		if c.Name == expectedName && found == nil {
			found = &containers[i]
		}
		if strings.Contains(c.Name, expectedName) {
			matchingIDs = append(matchingIDs, c.ID)
		}
	}

	// Start intent is encoded in the stored container ID: start records
	// it, stop clears it. The persisted status field plays no part.
	expectRunning := a.ContainerID != ""

	switch {
	case expectRunning && found == nil:
		issues = append(issues, MissingContainer{Agent: agentName})
	case expectRunning && found.State != "running":
		issues = append(issues, IncorrectStatus{
			Agent:    agentName,
			Expected: agent.StatusRunning,
			Actual:   agent.StatusFromContainerState(found.State),
		})
	case !expectRunning && found != nil && found.State == "running":
		issues = append(issues, IncorrectStatus{
			Agent:    agentName,
			Expected: agent.StatusStopped,
			Actual:   agent.StatusRunning,
		})
	}

	if a.ContainerID != "" && found != nil && a.ContainerID != found.ID {
		issues = append(issues, ContainerIDMismatch{
			Agent:    agentName,
			StoredID: a.ContainerID,
			ActualID: found.ID,
		})
	}

	if len(matchingIDs) > 1 {
		issues = append(issues, DuplicateContainers{Agent: agentName, ContainerIDs: matchingIDs})
	}

	return issues
}
