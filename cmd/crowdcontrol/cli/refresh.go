package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <name>",
	Short: "Re-run the repository's setup script inside the agent",
	Long: `Run .crowdcontrol/setup.sh in the agent's container, for example
after pulling dependency changes into the workspace.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
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
	if status != agent.StatusRunning {
		return fmt.Errorf("agent %q is not running, start it with: crowdcontrol start %s", agentName, agentName)
	}

	fmt.Printf("Running setup script in agent %q...\n", agentName)
	err = rt.Exec(ctx, name.Container(agentName), []string{"sh", "-c", "cd /workspace && sh .crowdcontrol/setup.sh"}, container.ExecOptions{
		Attach: true,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("setup script failed: %w", err)
	}
	fmt.Println("Setup complete")
	return nil
}
