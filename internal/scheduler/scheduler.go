// Package scheduler runs the recurring operational jobs: rebase, harvest,
// and withdrawal funding.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"yieldpilot/internal/service"
)

type Scheduler struct {
	cron *cron.Cron
	svc  service.OrchestratorService
	log  *zap.SugaredLogger
}

func New(svc service.OrchestratorService, log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scheduler{
		cron: cron.New(),
		svc:  svc,
		log:  log,
	}
}

// Start registers the three jobs and kicks off the cron loop. Harvest runs
// before the next rebase picks its proceeds up into the scaling factor.
func (s *Scheduler) Start(rebaseSpec, harvestSpec, fundingSpec string) error {
	if _, err := s.cron.AddFunc(rebaseSpec, s.runRebase); err != nil {
		return fmt.Errorf("failed to schedule rebase %q: %w", rebaseSpec, err)
	}
	if _, err := s.cron.AddFunc(harvestSpec, s.runHarvest); err != nil {
		return fmt.Errorf("failed to schedule harvest %q: %w", harvestSpec, err)
	}
	if _, err := s.cron.AddFunc(fundingSpec, s.runFunding); err != nil {
		return fmt.Errorf("failed to schedule funding %q: %w", fundingSpec, err)
	}
	s.cron.Start()
	s.log.Infow("scheduler started",
		"rebase", rebaseSpec,
		"harvest", harvestSpec,
		"funding", fundingSpec,
	)
	return nil
}

// Stop halts the cron loop and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runRebase() {
	aum, err := s.svc.Rebase()
	if err != nil {
		s.log.Errorw("scheduled rebase failed", "err", err)
		return
	}
	s.log.Infow("scheduled rebase complete", "totalAUM", aum.String())
}

func (s *Scheduler) runHarvest() {
	harvested, err := s.svc.Harvest()
	if err != nil {
		s.log.Errorw("scheduled harvest failed", "err", err)
		return
	}
	if harvested.IsPositive() {
		s.log.Infow("scheduled harvest complete", "amount", harvested.String())
	}
}

func (s *Scheduler) runFunding() {
	funded, err := s.svc.FundAvailable()
	if err != nil {
		s.log.Errorw("scheduled funding failed", "err", err)
		return
	}
	if len(funded) > 0 {
		s.log.Infow("scheduled funding complete", "requests", funded)
	}
}
