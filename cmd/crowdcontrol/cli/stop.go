package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

var (
	stopAll   bool
	stopForce bool
)

var stopCmd = &cobra.Command{
	Use:   "stop [name]",
	Short: "Stop an agent's container",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().BoolVar(&stopAll, "all", false, "stop all agents")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "kill the container instead of a graceful stop")
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	if stopAll == (len(args) == 1) {
		return errors.New("specify either an agent name or --all")
	}

	store := newStore()
	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var names []string
	if stopAll {
		names, err = store.List()
		if err != nil {
			return err
		}
	} else {
		names = args
	}

	var failed int
	for _, agentName := range names {
		if err := stopOne(ctx, store, rt, agentName); err != nil {
			log.Error("failed to stop agent", "agent", agentName, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to stop %d agent(s)", failed)
	}
	return nil
}

func stopOne(ctx context.Context, store *agent.Store, rt container.Runtime, agentName string) error {
	a, err := loadAgent(store, agentName)
	if err != nil {
		return err
	}

	status, err := a.ComputeLiveStatus(ctx, rt)
	if err != nil {
		return err
	}
	if status == agent.StatusRunning {
		if err := rt.StopContainer(ctx, name.Container(agentName), stopForce); err != nil {
			return err
		}
	}

	// Clearing the container reference records that the agent is no
	// longer meant to be running.
	if _, err := store.Update(agentName, func(a *agent.Agent) error {
		a.ContainerID = ""
		return nil
	}); err != nil {
		return err
	}

	fmt.Printf("Agent %q stopped\n", agentName)
	return nil
}
