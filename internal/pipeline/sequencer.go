package pipeline

import (
	"context"
	"time"

	"mintrader/internal/domain/iteration"
	"mintrader/internal/metrics"
	"mintrader/pkg/errors"
	"mintrader/pkg/logger"
)

// Sequencer drives one iteration through its phases. Each step returns a
// partial update; the sequencer merges it, checkpoints the merged state, and
// moves on. A step error halts the iteration with the last checkpointed
// state intact, so a later run can resume from the failed phase.
type Sequencer struct {
	deps Deps
	cfg  Config
}

// NewSequencer creates the step sequencer
func NewSequencer(deps Deps, cfg Config) *Sequencer {
	if cfg.MaxAnalyses <= 0 {
		cfg.MaxAnalyses = 3
	}
	return &Sequencer{deps: deps, cfg: cfg}
}

// Run advances state until the terminal phase. The returned state is always
// the last successfully checkpointed one, also when err is non-nil.
func (s *Sequencer) Run(ctx context.Context, state *iteration.WorkflowState) (*iteration.WorkflowState, error) {
	log := logger.Get()
	started := time.Now()

	s.deps.Events.IterationStarted(ctx, state.IterationID)

	for !state.Phase.Terminal() {
		phase := state.Phase
		stepStarted := time.Now()

		update, err := s.step(ctx, state)
		if err != nil {
			failed := s.fail(ctx, state, started, err)
			return failed, errors.Wrapf(errors.ErrIterationFailed, "step %s: %v", phase, err)
		}

		next, err := state.Apply(update)
		if err != nil {
			return s.fail(ctx, state, started, err), err
		}

		err = s.deps.Checkpoints.Save(ctx, next)
		metrics.RecordCheckpointSave(err)
		if err != nil {
			metrics.RecordIteration("failed", time.Since(started))
			s.deps.Events.IterationFailed(ctx, state.IterationID, phase, err.Error())
			return state, err
		}

		metrics.RecordStep(string(phase), time.Since(stepStarted))
		log.Infow("step completed",
			"iteration_id", state.IterationID,
			"phase", phase,
			"next_phase", next.Phase,
			"duration_ms", time.Since(stepStarted).Milliseconds())

		state = next
	}

	metrics.RecordIteration("completed", time.Since(started))
	s.deps.Events.IterationCompleted(ctx, state)
	return state, nil
}

// fail marks the iteration terminally failed and checkpoints the error
// state. Fresh runs retry the work under a new iteration id; the failed one
// stays on record for inspection.
func (s *Sequencer) fail(ctx context.Context, state *iteration.WorkflowState, started time.Time, cause error) *iteration.WorkflowState {
	failed := state.Failed(cause.Error())

	if err := s.deps.Checkpoints.Save(ctx, failed); err != nil {
		logger.Get().Errorw("failed to checkpoint error state",
			"iteration_id", state.IterationID,
			"error", err)
	}

	metrics.RecordIteration("failed", time.Since(started))
	s.deps.Events.IterationFailed(ctx, state.IterationID, state.Phase, cause.Error())
	return failed
}

func (s *Sequencer) step(ctx context.Context, state *iteration.WorkflowState) (*iteration.Update, error) {
	switch state.Phase {
	case iteration.PhaseAssess:
		return s.assess(ctx, state)
	case iteration.PhaseSelect:
		return s.selectStocks(ctx, state)
	case iteration.PhaseAnalyze:
		return s.analyze(ctx, state)
	case iteration.PhaseDecide:
		return s.decide(ctx, state)
	case iteration.PhaseExecute:
		return s.execute(ctx, state)
	case iteration.PhaseFinalize:
		return s.finalize(ctx, state)
	}
	return nil, errors.Wrapf(errors.ErrStateInvariant, "cannot step from phase %q", state.Phase)
}
