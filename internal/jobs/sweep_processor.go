package jobs

import (
	"context"

	"github.com/pagelake/pagelake/internal/logging"
	"github.com/pagelake/pagelake/internal/sweep"
)

// Runner executes a single sweep pass over the pending chunk directory.
type Runner interface {
	Run(ctx context.Context) (*sweep.Report, error)
}

// SweepProcessor adapts a sweep runner to the worker's JobProcessor interface.
type SweepProcessor struct {
	runner Runner
}

// NewSweepProcessor creates a new SweepProcessor instance
func NewSweepProcessor(runner Runner) *SweepProcessor {
	return &SweepProcessor{runner: runner}
}

// ProcessJobs runs one sweep pass and logs the aggregate outcome.
func (p *SweepProcessor) ProcessJobs(ctx context.Context) error {
	report, err := p.runner.Run(ctx)
	if err != nil {
		return err
	}
	if report.Total > 0 {
		logging.L().Info().
			Int("total", report.Total).
			Int("succeeded", report.Succeeded).
			Int("failed", report.Failed).
			Msg("sweep pass complete")
	}
	return nil
}
