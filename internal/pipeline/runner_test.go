package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintrader/internal/domain/iteration"
)

func TestRunner_FreshIteration(t *testing.T) {
	f := newFixture()
	runner := NewRunner(f.sequencer, f.checkpoints)

	state, err := runner.Run(context.Background(), "it-new")
	require.NoError(t, err)

	assert.Equal(t, "it-new", state.IterationID)
	assert.Equal(t, iteration.PhaseDone, state.Phase)
}

func TestRunner_ResumesExistingCheckpoint(t *testing.T) {
	f := newFixture()
	runner := NewRunner(f.sequencer, f.checkpoints)

	interrupted := iteration.NewState("it-1", time.Now())
	interrupted.Phase = iteration.PhaseFinalize
	require.NoError(t, f.checkpoints.Save(context.Background(), interrupted))
	f.checkpoints.saved = nil

	state, err := runner.Run(context.Background(), "it-1")
	require.NoError(t, err)

	assert.Equal(t, iteration.PhaseDone, state.Phase)
	// only finalize ran
	assert.Empty(t, f.analysis.calls)
	assert.Empty(t, f.trading.submitted)
}

func TestRunner_CompletedIterationIsNotRerun(t *testing.T) {
	f := newFixture()
	runner := NewRunner(f.sequencer, f.checkpoints)

	done := iteration.NewState("it-1", time.Now())
	done.Phase = iteration.PhaseDone
	require.NoError(t, f.checkpoints.Save(context.Background(), done))

	state, err := runner.Run(context.Background(), "it-1")
	require.NoError(t, err)

	assert.Equal(t, iteration.PhaseDone, state.Phase)
	assert.Empty(t, f.events.started)
}

func TestRunner_ResumeIncompleteWithNothingPending(t *testing.T) {
	f := newFixture()
	runner := NewRunner(f.sequencer, f.checkpoints)

	state, err := runner.ResumeIncomplete(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestRunner_ResumeIncompleteFinishesInterruptedRun(t *testing.T) {
	f := newFixture()
	runner := NewRunner(f.sequencer, f.checkpoints)

	interrupted := iteration.NewState("it-old", time.Now())
	interrupted.Phase = iteration.PhaseFinalize
	require.NoError(t, f.checkpoints.Save(context.Background(), interrupted))

	state, err := runner.ResumeIncomplete(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "it-old", state.IterationID)
	assert.Equal(t, iteration.PhaseDone, state.Phase)
}
