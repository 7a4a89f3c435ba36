package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
)

// newRuntime connects to Docker and verifies the daemon is reachable.
func newRuntime(ctx context.Context) (container.Runtime, error) {
	rt, err := container.NewDockerRuntime()
	if err != nil {
		return nil, err
	}
	if err := rt.Ping(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("docker is not available: %w", err)
	}
	return rt, nil
}

// newStore returns the metadata store for the resolved configuration.
func newStore() *agent.Store {
	return agent.NewStore(cfg)
}

// loadAgent loads a record, mapping NotFound to a friendlier message.
func loadAgent(store *agent.Store, agentName string) (*agent.Agent, error) {
	a, err := store.Load(agentName)
	if err != nil {
		if agent.IsNotFound(err) {
			return nil, fmt.Errorf("agent %q does not exist", agentName)
		}
		return nil, err
	}
	return a, nil
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}
