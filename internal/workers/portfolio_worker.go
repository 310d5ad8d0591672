package workers

import (
	"context"

	"github.com/google/uuid"

	"mintrader/internal/pipeline"
	"mintrader/pkg/logger"
)

// PortfolioWorker runs one trading iteration per trigger. It gates on the
// broker's market clock and finishes any interrupted iteration before
// starting a fresh one.
type PortfolioWorker struct {
	runner  *pipeline.Runner
	trading pipeline.TradingGateway
}

// NewPortfolioWorker creates the worker
func NewPortfolioWorker(runner *pipeline.Runner, trading pipeline.TradingGateway) *PortfolioWorker {
	return &PortfolioWorker{
		runner:  runner,
		trading: trading,
	}
}

// RunOnce executes a single scheduled trigger. A closed market skips the
// run; it is not an error.
func (w *PortfolioWorker) RunOnce(ctx context.Context) error {
	log := logger.Get()

	clock, err := w.trading.GetClock(ctx)
	if err != nil {
		return err
	}
	if !clock.IsOpen {
		log.Infow("market closed, skipping iteration", "next_open", clock.NextOpen)
		return nil
	}

	if state, err := w.runner.ResumeIncomplete(ctx); err != nil {
		log.Errorw("resume of interrupted iteration failed",
			"error", err)
		// fall through: a stuck old iteration must not starve fresh ones
	} else if state != nil {
		log.Infow("interrupted iteration finished",
			"iteration_id", state.IterationID,
			"phase", state.Phase)
	}

	iterationID := uuid.New().String()
	log.Infow("starting iteration", "iteration_id", iterationID)

	state, err := w.runner.Run(ctx, iterationID)
	if err != nil {
		return err
	}

	log.Infow("iteration completed",
		"iteration_id", state.IterationID,
		"analyses", len(state.Analyses),
		"trades", len(state.Executed),
		"skipped", len(state.ConstraintRejections))
	return nil
}
