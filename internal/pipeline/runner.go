package pipeline

import (
	"context"
	"time"

	"mintrader/internal/domain/iteration"
	"mintrader/pkg/errors"
	"mintrader/pkg/logger"
)

// Runner is the single entry point for running iterations. It owns the
// resume decision: an interrupted iteration is picked up at its checkpointed
// phase before any new one starts.
type Runner struct {
	sequencer   *Sequencer
	checkpoints iteration.CheckpointRepository
	now         func() time.Time
}

// NewRunner creates the iteration runner
func NewRunner(sequencer *Sequencer, checkpoints iteration.CheckpointRepository) *Runner {
	return &Runner{
		sequencer:   sequencer,
		checkpoints: checkpoints,
		now:         time.Now,
	}
}

// Run executes one full iteration under the given id. If a checkpoint
// already exists for the id, the iteration resumes from its phase with all
// prior step results intact.
func (r *Runner) Run(ctx context.Context, iterationID string) (*iteration.WorkflowState, error) {
	log := logger.Get()

	state, err := r.checkpoints.Load(ctx, iterationID)
	switch {
	case err == nil:
		if state.Phase.Terminal() {
			log.Infow("iteration already finished, not re-running",
				"iteration_id", iterationID,
				"phase", state.Phase)
			return state, nil
		}
		log.Infow("resuming interrupted iteration",
			"iteration_id", iterationID,
			"phase", state.Phase)
	case errors.Is(err, errors.ErrNotFound):
		state = iteration.NewState(iterationID, r.now())
		if err := r.checkpoints.Save(ctx, state); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return r.sequencer.Run(ctx, state)
}

// ResumeIncomplete finishes the most recent interrupted iteration, if any.
// Returns nil state when nothing needs resuming.
func (r *Runner) ResumeIncomplete(ctx context.Context) (*iteration.WorkflowState, error) {
	state, err := r.checkpoints.LatestIncomplete(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	logger.Get().Infow("found interrupted iteration",
		"iteration_id", state.IterationID,
		"phase", state.Phase)
	return r.sequencer.Run(ctx, state)
}
