package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	triggerPriority int
	triggerWorkers  []string
)

var triggerCmd = &cobra.Command{
	Use:   "trigger <goal>",
	Short: "Submit a goal",
	Long: `Submit a free-text goal for execution.

With Redis configured the goal is appended to the durable queue and
picked up by a running 'crewgrid serve'. Without Redis the goal runs
synchronously in this process.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrigger,
}

func init() {
	triggerCmd.Flags().IntVarP(&triggerPriority, "priority", "p", 0, "Goal priority, higher runs first")
	triggerCmd.Flags().StringSliceVarP(&triggerWorkers, "assign", "a", nil, "Hint which workers should handle the goal")
}

func runTrigger(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.queue != nil {
		id, err := a.queue.Enqueue(ctx, goal, triggerPriority, triggerWorkers)
		if err == nil {
			fmt.Printf("Goal queued: %s\n", id)
			return nil
		}
		fmt.Printf("Enqueue failed (%v), running inline.\n", err)
	}

	// No durable queue: run to completion before returning so the
	// process exit doesn't strand the goal.
	if err := a.runner.Run(ctx, goal); err != nil {
		return fmt.Errorf("run goal: %w", err)
	}
	fmt.Println("Goal executed inline.")
	return nil
}
