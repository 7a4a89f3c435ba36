// Package cli implements the crowdcontrol command-line interface using
// Cobra. Commands are thin wrappers over the agent store, the Docker
// runtime, and the state validator.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/config"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
)

var (
	verbose       bool
	workspacesDir string
	imageName     string

	// cfg is resolved in PersistentPreRunE and shared by all commands.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "crowdcontrol",
	Short: "CrowdControl - Manage Claude Code agents in containers",
	Long: `CrowdControl manages named agents: development environments that
each pair a cloned repository workspace with one Docker container.

Agent identity and configuration live in per-workspace metadata files;
Docker is the sole authority for execution state.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		if workspacesDir != "" {
			settings.WorkspacesDir = workspacesDir
		}
		if imageName != "" {
			settings.Image = imageName
		}
		if verbose {
			settings.Verbose = true
		}

		cfg, err = config.New(settings)
		if err != nil {
			return err
		}

		if err := log.Init(log.Options{
			Verbose:       settings.Verbose,
			DebugDir:      config.DebugLogDir(),
			RetentionDays: 14,
		}); err != nil {
			// Log init failure is non-fatal
			cmd.PrintErrf("Warning: failed to initialize debug logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&workspacesDir, "workspaces-dir", "",
		"workspaces directory (env: CROWDCONTROL_WORKSPACES_DIR)")
	rootCmd.PersistentFlags().StringVar(&imageName, "image", "",
		"container image for agents (env: CROWDCONTROL_IMAGE)")
}
