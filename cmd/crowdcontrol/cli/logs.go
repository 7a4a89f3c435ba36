package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

var (
	logsFollow     bool
	logsTail       string
	logsTimestamps bool
)

var logsCmd = &cobra.Command{
	Use:   "logs <name>",
	Short: "Show an agent's container logs",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow the log stream")
	logsCmd.Flags().StringVarP(&logsTail, "tail", "n", "", "number of lines to show from the end")
	logsCmd.Flags().BoolVar(&logsTimestamps, "timestamps", false, "include timestamps")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	agentName := args[0]
	store := newStore()

	if _, err := loadAgent(store, agentName); err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	stream, err := rt.Logs(ctx, name.Container(agentName), container.LogOptions{
		Follow:     logsFollow,
		Tail:       logsTail,
		Timestamps: logsTimestamps,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	return container.Demux(os.Stdout, os.Stderr, stream)
}
