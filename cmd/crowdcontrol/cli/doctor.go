package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/validator"
)

var doctorRepair bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check agents for inconsistencies between records and containers",
	Long: `Compare every agent's stored record against the actual container
state and report anything that disagrees. With --repair, fix the
record-side inconsistencies automatically.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorRepair, "repair", false, "repair record-side inconsistencies")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	store := newStore()
	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	v := validator.New(store, rt)

	fmt.Println("Checking agent consistency...")
	inconsistencies, err := v.ValidateAll(ctx)
	if err != nil {
		if errors.Is(err, validator.ErrRuntimeUnavailable) {
			return fmt.Errorf("cannot check consistency: %w", err)
		}
		return err
	}

	if len(inconsistencies) == 0 {
		color.Green("✓ All agents are consistent")
		return nil
	}

	color.Yellow("Found %d inconsistenc%s:", len(inconsistencies), plural(len(inconsistencies), "y", "ies"))
	for _, inc := range inconsistencies {
		fmt.Printf("  %s %s\n", color.YellowString("!"), inc)
	}

	if !doctorRepair {
		fmt.Println()
		fmt.Println("Run with --repair to fix record-side inconsistencies.")
		return fmt.Errorf("found %d inconsistenc%s", len(inconsistencies), plural(len(inconsistencies), "y", "ies"))
	}

	fmt.Println()
	fmt.Println("Repairing...")
	results, err := v.Repair(ctx, inconsistencies)
	if err != nil {
		return err
	}

	var unrepaired int
	for _, r := range results {
		switch {
		case r.Err != nil:
			color.Red("  ✗ %s: %v", r.Inconsistency, r.Err)
			unrepaired++
		case r.Repaired:
			color.Green("  ✓ %s", r.Message)
		default:
			color.Yellow("  ! %s", r.Message)
			unrepaired++
		}
	}

	// Re-validate to confirm the repairs converged.
	remaining, err := v.ValidateAll(ctx)
	if err != nil {
		return err
	}
	fmt.Println()
	if len(remaining) == 0 {
		color.Green("✓ All agents are consistent")
		return nil
	}
	if unrepaired > 0 {
		fmt.Printf("%d inconsistenc%s need%s manual action.\n",
			len(remaining), plural(len(remaining), "y", "ies"), plural(len(remaining), "s", ""))
		return nil
	}
	return fmt.Errorf("%d inconsistenc%s remain after repair", len(remaining), plural(len(remaining), "y", "ies"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
