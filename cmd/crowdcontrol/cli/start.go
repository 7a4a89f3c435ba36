package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

var (
	startWait    bool
	startTimeout time.Duration
)

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start an agent's container",
	Long: `Start the agent's container, creating it first if it no longer
exists. The container ID is recorded in the agent's metadata.`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&startWait, "wait", "w", false, "wait until the container is running")
	startCmd.Flags().DurationVar(&startTimeout, "timeout", 60*time.Second, "timeout for --wait")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	agentName := args[0]
	store := newStore()

	a, err := loadAgent(store, agentName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	status, err := a.ComputeLiveStatus(ctx, rt)
	if err != nil {
		return err
	}
	if status == agent.StatusRunning {
		fmt.Printf("Agent %q is already running\n", agentName)
		return nil
	}

	// Resolve the container to start: the stored reference if it is
	// still valid, otherwise a freshly created container.
	ref := a.ContainerID
	if ref != "" {
		valid, err := agent.ValidateContainerID(ctx, rt, agentName, ref)
		if err != nil {
			return err
		}
		if !valid {
			ref = ""
		}
	}
	if ref == "" {
		// A container with the expected name may exist even though the
		// stored reference was stale; adopt it rather than creating a
		// duplicate.
		if _, err := rt.Inspect(ctx, name.Container(agentName)); err == nil {
			ref = name.Container(agentName)
		} else if !errors.Is(err, container.ErrNotFound) {
			return err
		}
	}
	if ref == "" {
		if err := rt.PullImage(ctx, cfg.Image); err != nil {
			return err
		}
		ref, err = rt.CreateContainer(ctx, container.CreateConfig{
			Name:          name.Container(agentName),
			Image:         cfg.Image,
			WorkspacePath: a.WorkspacePath,
			Memory:        cfg.DefaultMemory,
			CPUs:          cfg.DefaultCPUs,
		})
		if err != nil {
			return err
		}
	}

	if err := rt.StartContainer(ctx, ref); err != nil {
		return err
	}

	// Record the canonical container ID, not the name we may have
	// started it by.
	containerID := ref
	if summaries, err := rt.ListContainers(ctx); err == nil {
		for _, c := range summaries {
			if c.Name == name.Container(agentName) {
				containerID = c.ID
				break
			}
		}
	}

	if _, err := store.Update(agentName, func(a *agent.Agent) error {
		a.ContainerID = containerID
		return nil
	}); err != nil {
		return err
	}

	if startWait {
		if err := waitForRunning(ctx, rt, agentName, startTimeout); err != nil {
			return err
		}
	}

	fmt.Printf("Agent %q started\n", agentName)
	return nil
}

func waitForRunning(ctx context.Context, rt container.Runtime, agentName string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		status, err := agent.LiveStatusByName(ctx, rt, agentName)
		if err != nil {
			return err
		}
		if status == agent.StatusRunning {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("agent %q did not reach running state within %s", agentName, timeout)
}
