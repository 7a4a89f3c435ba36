package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
)

var (
	listAll    bool
	listStatus string
	listFormat string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List agents with their live status",
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include stopped agents")
	listCmd.Flags().StringVar(&listStatus, "status", "", "only show agents with this status (created, running, stopped, error)")
	listCmd.Flags().StringVar(&listFormat, "format", "table", "output format (table, json, yaml)")
	rootCmd.AddCommand(listCmd)
}

// listEntry is the row shape shared by all output formats.
type listEntry struct {
	Name       string `json:"name" yaml:"name"`
	Status     string `json:"status" yaml:"status"`
	Repository string `json:"repository" yaml:"repository"`
	Branch     string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Created    string `json:"created" yaml:"created"`
}

// listVisible decides whether an agent shows up in the listing. An
// explicit --status filter wins; otherwise only stopped agents are
// hidden unless --all is given.
func listVisible(status agent.Status, all bool, filter string) bool {
	if filter != "" {
		return string(status) == filter
	}
	if all {
		return true
	}
	return status != agent.StatusStopped
}

func runList(cmd *cobra.Command, args []string) error {
	store := newStore()
	names, err := store.List()
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var entries []listEntry
	for _, agentName := range names {
		a, err := store.Load(agentName)
		if err != nil {
			// Corrupted records are reported by doctor, not here.
			log.Warn("skipping unreadable agent record", "agent", agentName, "error", err)
			continue
		}
		status, err := a.ComputeLiveStatus(ctx, rt)
		if err != nil {
			log.Warn("could not resolve agent status", "agent", a.Name, "error", err)
			status = agent.StatusError
		}
		if !listVisible(status, listAll, listStatus) {
			continue
		}
		entries = append(entries, listEntry{
			Name:       a.Name,
			Status:     string(status),
			Repository: a.Repository,
			Branch:     a.Branch,
			Created:    formatAge(a.CreatedAt),
		})
	}

	switch listFormat {
	case "table":
		if len(entries) == 0 {
			fmt.Println("No agents found. Create one with: crowdcontrol new <repository>")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tREPOSITORY\tBRANCH\tCREATED")
		for _, e := range entries {
			branch := e.Branch
			if branch == "" {
				branch = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.Status, e.Repository, branch, e.Created)
		}
		return w.Flush()
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(entries)
	default:
		return fmt.Errorf("unknown format %q (expected table, json, or yaml)", listFormat)
	}
}
