package main

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/crewgrid/crewgrid/internal/config"
	"github.com/crewgrid/crewgrid/internal/dispatch"
	"github.com/crewgrid/crewgrid/internal/engine"
	"github.com/crewgrid/crewgrid/internal/queue"
	"github.com/crewgrid/crewgrid/internal/roster"
	"github.com/crewgrid/crewgrid/internal/specialist"
	"github.com/crewgrid/crewgrid/internal/store"
	"github.com/crewgrid/crewgrid/internal/workflow"
)

// app bundles the wired process components. queue and worker are nil
// when no Redis address is configured; goals then run inline.
type app struct {
	cfg        *config.Config
	db         *store.DB
	redis      *redis.Client
	queue      queue.Queue
	dispatcher *dispatch.Dispatcher
	runner     *engine.Runner
	worker     *engine.QueueWorker
	service    *engine.Service
}

// buildApp wires the full stack from configuration: SQLite store,
// optional Redis queue, roster, specialist registry, workflow graph,
// dispatcher and engine.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	r, err := loadRoster(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := r.Seed(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed roster: %w", err)
	}

	registry, err := specialist.DefaultRegistry(db, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build registry: %w", err)
	}
	graph, err := workflow.NewGraph(registry)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build graph: %w", err)
	}

	a := &app{
		cfg:        cfg,
		db:         db,
		dispatcher: dispatch.New(db, registry),
	}
	a.runner = engine.NewRunner(graph, a.dispatcher, db)

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		q := queue.NewRedis(a.redis, cfg.Redis.Stream, cfg.Redis.Group, cfg.Redis.Consumer)
		if err := q.EnsureGroup(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure consumer group: %w", err)
		}
		a.queue = q
		a.worker = engine.NewQueueWorker(q, a.runner, db, cfg.Queue.Block)
	} else {
		log.Printf("[crewgrid] no redis address configured, goals run inline")
	}

	a.service = engine.NewService(a.queue, a.runner, db)
	return a, nil
}

func loadRoster(cfg *config.Config) (*roster.Roster, error) {
	if cfg.Roster.Path == "" {
		return roster.Default()
	}
	return roster.Load(cfg.Roster.Path)
}

// Close releases the app's connections.
func (a *app) Close() error {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("[crewgrid] closing redis: %v", err)
		}
	}
	return a.db.Close()
}
