package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewgrid/crewgrid/internal/config"
	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/pkg/models"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show roster, message and activity state",
	Long: `Display the current state of the office.

Shows:
  - Every worker with status, room and current task
  - Recent messages
  - Recent activity log entries`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "How many messages and activity entries to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := os.Stat(cfg.Database.Path); os.IsNotExist(err) {
		fmt.Println("No database yet. Run 'crewgrid serve' or 'crewgrid trigger <goal>' to start.")
		return nil
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	ctx := cmd.Context()
	workers, err := db.ListWorkers(ctx)
	if err != nil {
		return fmt.Errorf("list workers: %w", err)
	}

	fmt.Println("Workers:")
	if len(workers) == 0 {
		fmt.Println("  none (roster not seeded yet)")
	}
	for _, w := range workers {
		line := fmt.Sprintf("  %-14s %-12s %-15s", w.Name, statusColor(w.Status), w.Room)
		if w.CurrentTask != "" {
			line += "  " + w.CurrentTask
		}
		fmt.Println(line)
	}

	messages, err := db.ListRecentMessages(ctx, statusLimit)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	fmt.Println()
	fmt.Println("Recent messages:")
	if len(messages) == 0 {
		fmt.Println("  none")
	}
	for _, m := range messages {
		fmt.Printf("  %s  %s -> %s [%s]: %s\n",
			m.CreatedAt.Format(time.TimeOnly), m.From, m.To, m.Kind, m.Content)
	}

	entries, err := db.ListActivity(ctx, statusLimit)
	if err != nil {
		return fmt.Errorf("list activity: %w", err)
	}
	fmt.Println()
	fmt.Println("Recent activity:")
	if len(entries) == 0 {
		fmt.Println("  none")
	}
	for _, e := range entries {
		fmt.Printf("  %s  %-14s %s\n",
			e.CreatedAt.Format(time.TimeOnly), e.WorkerID, e.Action)
	}
	return nil
}

func statusColor(s models.WorkerStatus) string {
	switch s {
	case models.StatusIdle:
		return color.GreenString(string(s))
	case models.StatusWorking, models.StatusMeeting:
		return color.YellowString(string(s))
	case models.StatusError:
		return color.RedString(string(s))
	default:
		return color.HiBlackString(string(s))
	}
}
