package services

import (
	"context"
	"time"

	"github.com/robfig/cron"

	dataagg "github.com/devlabsgt/backend/internal/data/aggregates"
	"github.com/devlabsgt/backend/internal/observability"
	"github.com/devlabsgt/backend/internal/platform/envutil"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

// Daily at 09:00 server time. Spec includes a seconds field.
const defaultSweepSpec = "0 0 9 * * *"

// SweepService closes out Active projects whose end date has passed.
// Each project is finished in its own transaction so a single failure
// does not block the rest of the run.
type SweepService struct {
	log       *logger.Logger
	aggregate *dataagg.ProjectAggregate
	metrics   *observability.Metrics
	spec      string
	runner    *cron.Cron
}

func NewSweepService(log *logger.Logger, aggregate *dataagg.ProjectAggregate, metrics *observability.Metrics) *SweepService {
	return &SweepService{
		log:       log.With("service", "SweepService"),
		aggregate: aggregate,
		metrics:   metrics,
		spec:      envutil.Get("PROJECT_SWEEP_CRON", defaultSweepSpec),
	}
}

// Start schedules the daily sweep. Call Stop on shutdown.
func (s *SweepService) Start() error {
	c := cron.New()
	if err := c.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_, _, _ = s.Run(ctx)
	}); err != nil {
		return err
	}
	c.Start()
	s.runner = c
	s.log.Info("project sweep scheduled", "spec", s.spec)
	return nil
}

func (s *SweepService) Stop() {
	if s.runner != nil {
		s.runner.Stop()
	}
}

// Run executes one sweep pass immediately and reports how many
// projects it finished and how many individual commits failed.
func (s *SweepService) Run(ctx context.Context) (finished, failed int, err error) {
	start := time.Now()
	finished, failed, err = s.aggregate.FinishExpired(ctx, time.Now())
	if err != nil {
		s.log.Error("project sweep failed", "error", err)
		s.metrics.ObserveSweep(finished, failed+1)
		return finished, failed, err
	}
	s.metrics.ObserveSweep(finished, failed)
	if finished > 0 || failed > 0 {
		s.log.Info("project sweep completed", "finished", finished, "failed", failed, "duration", time.Since(start))
	}
	return finished, failed, nil
}
