package main

import (
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the orchestrator",
	Long: `Run the crewgrid orchestrator: the goal queue consumer and the
periodic task dispatcher, until interrupted.

Requires a Redis address (redis.addr in crewgrid.yaml or REDIS_ADDR)
for the durable goal queue; without one only the dispatcher runs and
goals must be submitted with 'crewgrid trigger'.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Printf("[crewgrid] serving with database %s", a.cfg.Database.Path)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.dispatcher.RunForever(ctx, a.cfg.Dispatch.Interval)
	}()

	if a.worker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.worker.Run(ctx)
		}()
	}

	<-ctx.Done()
	log.Printf("[crewgrid] shutting down")
	wg.Wait()
	return nil
}
