package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crewgrid/crewgrid/pkg/models"
)

var (
	overrideStatus string
	overrideRoom   string
	overrideNote   string
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Force every worker to a status and room",
	Long: `Force every worker to the given status and room, clearing current
tasks. Useful for resetting the roster after a crash or for clocking
everyone out.`,
	RunE: runOverride,
}

func init() {
	overrideCmd.Flags().StringVar(&overrideStatus, "status", string(models.StatusIdle), "Worker status to set")
	overrideCmd.Flags().StringVar(&overrideRoom, "room", string(models.RoomDesks), "Room to move workers to")
	overrideCmd.Flags().StringVar(&overrideNote, "note", "", "Optional note recorded with the override")
}

func runOverride(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	status := models.WorkerStatus(overrideStatus)
	room := models.Room(overrideRoom)
	if err := a.service.OverrideWorkers(ctx, status, room, overrideNote); err != nil {
		return err
	}
	fmt.Printf("All workers set to %s in %s.\n", status, room)
	return nil
}
