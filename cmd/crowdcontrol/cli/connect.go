package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

var (
	connectCommand string
	connectDetach  bool
)

var connectCmd = &cobra.Command{
	Use:   "connect <name>",
	Short: "Attach to an agent's Claude session",
	Long: `Run a command interactively inside the agent's container. By default
this launches Claude; use --command for an arbitrary shell command.`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().StringVarP(&connectCommand, "command", "c", "", "command to run instead of the default session")
	connectCmd.Flags().BoolVarP(&connectDetach, "detach", "d", false, "run the command without attaching")
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
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

	execCmd := []string{"claude", "--dangerously-skip-permissions"}
	if connectCommand != "" {
		execCmd = []string{"sh", "-c", connectCommand}
	}

	opts := container.ExecOptions{
		Attach: !connectDetach,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	if opts.Attach && term.IsTerminal(int(os.Stdin.Fd())) {
		opts.TTY = true
		oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to set raw terminal mode: %w", err)
		}
		defer term.Restore(int(os.Stdin.Fd()), oldState)
	}

	return rt.Exec(ctx, name.Container(agentName), execCmd, opts)
}
