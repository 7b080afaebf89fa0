package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"

	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/core"
)

// scheduler runs the pipeline on a cron schedule and persists the per-run
// dataset alongside the newsletter the writer already saves.
type scheduler struct {
	expr     *cronexpr.Expression
	pipeline *core.Pipeline
	logger   *log.Logger
}

func newScheduler(cronSpec string, pipeline *core.Pipeline, logger *log.Logger) (*scheduler, error) {
	expr, err := cronexpr.Parse(cronSpec)
	if err != nil {
		return nil, err
	}
	return &scheduler{expr: expr, pipeline: pipeline, logger: logger}, nil
}

func (s *scheduler) run() {
	for {
		next := s.expr.Next(time.Now())
		if next.IsZero() {
			s.logger.Printf("schedule has no future runs; scheduler stopping")
			return
		}
		s.logger.Printf("next scheduled pipeline run at %s", next.Format(time.RFC3339))
		time.Sleep(time.Until(next))

		state, err := s.pipeline.Orchestrator.Run(context.Background())
		if err != nil {
			s.logger.Printf("scheduled pipeline run failed: %v", err)
			continue
		}
		if _, err := s.pipeline.Store.SaveDataset(state.News); err != nil {
			s.logger.Printf("saving scheduled dataset failed: %v", err)
		}
	}
}
