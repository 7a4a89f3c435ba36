package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/container"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/git"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/name"
)

var (
	newBranch           string
	newMemory           string
	newCPUs             string
	newSkipVerification bool
)

var newCmd = &cobra.Command{
	Use:   "new <repository> [name]",
	Short: "Create a new agent",
	Long: `Create a new agent: clone the repository into a fresh workspace,
pull the agent image, and create (but not start) its container.

If no name is given, a random one is generated.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVarP(&newBranch, "branch", "b", "", "git branch to checkout")
	newCmd.Flags().StringVar(&newMemory, "memory", "", "memory limit (e.g. 2g, 1024m)")
	newCmd.Flags().StringVar(&newCPUs, "cpus", "", "CPU limit (e.g. 1.5, 2)")
	newCmd.Flags().BoolVar(&newSkipVerification, "skip-verification", false,
		"skip checking for a .crowdcontrol/ directory in the repository")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	repository := args[0]
	agentName := ""
	if len(args) > 1 {
		agentName = args[1]
	} else {
		agentName = name.Generate()
		fmt.Printf("Using generated name: %s\n", agentName)
	}
	if err := name.Validate(agentName); err != nil {
		return err
	}

	workspacePath := cfg.AgentWorkspacePath(agentName)
	if _, err := os.Stat(workspacePath); err == nil {
		return fmt.Errorf("agent %q already exists", agentName)
	}

	fmt.Printf("Creating new agent: %s\n", agentName)

	if err := os.MkdirAll(workspacePath, 0755); err != nil {
		return fmt.Errorf("creating workspace directory: %w", err)
	}

	ctx := context.Background()
	if err := git.Clone(ctx, repository, workspacePath, newBranch); err != nil {
		// A half-created workspace would shadow the agent name forever.
		if cleanupErr := os.RemoveAll(workspacePath); cleanupErr != nil {
			log.Warn("failed to clean up workspace after clone failure", "error", cleanupErr)
		}
		return err
	}
	fmt.Println("Repository cloned")

	if !newSkipVerification && !git.VerifySetup(workspacePath) {
		fmt.Println("Warning: repository does not contain a .crowdcontrol/ directory;")
		fmt.Println("the container will start but repository setup scripts will not run")
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.PullImage(ctx, cfg.Image); err != nil {
		return err
	}

	memory := newMemory
	if memory == "" {
		memory = cfg.DefaultMemory
	}
	cpus := newCPUs
	if cpus == "" {
		cpus = cfg.DefaultCPUs
	}

	_, err = rt.CreateContainer(ctx, container.CreateConfig{
		Name:          name.Container(agentName),
		Image:         cfg.Image,
		WorkspacePath: workspacePath,
		Memory:        memory,
		CPUs:          cpus,
	})
	if err != nil {
		return err
	}
	fmt.Println("Container created")

	// The container reference is only recorded by start; an agent that
	// was never started is not expected to be running.
	store := newStore()
	err = store.Save(&agent.Agent{
		Name:          agentName,
		Status:        agent.StatusCreated,
		Repository:    repository,
		Branch:        newBranch,
		CreatedAt:     time.Now().UTC(),
		WorkspacePath: workspacePath,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Agent %q created. Start it with: crowdcontrol start %s\n", agentName, agentName)
	return nil
}
