package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

var (
	removeForce         bool
	removeKeepWorkspace bool
)

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove an agent, its container, and its workspace",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "skip the confirmation prompt")
	removeCmd.Flags().BoolVar(&removeKeepWorkspace, "keep-workspace", false, "keep the workspace directory on disk")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	agentName := args[0]
	store := newStore()

	a, err := loadAgent(store, agentName)
	if err != nil {
		return err
	}

	if !removeForce {
		fmt.Printf("Remove agent %q and its workspace? [y/N] ", agentName)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	ref := name.Container(agentName)
	if _, err := rt.Inspect(ctx, ref); err == nil {
		if err := rt.StopContainer(ctx, ref, true); err != nil {
			return fmt.Errorf("failed to stop container: %w", err)
		}
		if err := rt.RemoveContainer(ctx, ref); err != nil {
			return fmt.Errorf("failed to remove container: %w", err)
		}
	} else if !errors.Is(err, container.ErrNotFound) {
		return err
	}

	if err := store.Delete(agentName); err != nil {
		return err
	}

	if !removeKeepWorkspace {
		if err := os.RemoveAll(a.WorkspacePath); err != nil {
			return fmt.Errorf("failed to remove workspace: %w", err)
		}
	}

	fmt.Printf("Agent %q removed\n", agentName)
	return nil
}
