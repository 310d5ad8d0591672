package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"mintrader/internal/domain/iteration"
	"mintrader/pkg/errors"
)

// CheckpointRepository stores workflow state as JSONB, one row per
// iteration. The phase is duplicated into its own column so resume can find
// incomplete iterations without unpacking every blob.
type CheckpointRepository struct {
	db *sqlx.DB
}

var _ iteration.CheckpointRepository = (*CheckpointRepository)(nil)

// NewCheckpointRepository creates the checkpoint repository
func NewCheckpointRepository(db *sqlx.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

// Save upserts the checkpoint for state's iteration id
func (r *CheckpointRepository) Save(ctx context.Context, state *iteration.WorkflowState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshal workflow state")
	}

	query := `
		INSERT INTO iteration_checkpoints (iteration_id, phase, state, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (iteration_id)
		DO UPDATE SET phase = EXCLUDED.phase, state = EXCLUDED.state, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, state.IterationID, string(state.Phase), payload); err != nil {
		return errors.Wrap(errors.ErrCheckpointUnavailable, err.Error())
	}
	return nil
}

// Load returns the checkpoint for iterationID
func (r *CheckpointRepository) Load(ctx context.Context, iterationID string) (*iteration.WorkflowState, error) {
	var payload []byte
	query := `SELECT state FROM iteration_checkpoints WHERE iteration_id = $1`
	if err := r.db.GetContext(ctx, &payload, query, iterationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrNotFound, "checkpoint %s", iterationID)
		}
		return nil, errors.Wrap(errors.ErrCheckpointUnavailable, err.Error())
	}
	return unmarshalState(payload)
}

// LatestIncomplete returns the newest checkpoint that has not reached the
// terminal phase
func (r *CheckpointRepository) LatestIncomplete(ctx context.Context) (*iteration.WorkflowState, error) {
	var payload []byte
	query := `
		SELECT state FROM iteration_checkpoints
		WHERE phase NOT IN ($1, $2)
		ORDER BY updated_at DESC
		LIMIT 1`
	if err := r.db.GetContext(ctx, &payload, query, string(iteration.PhaseDone), string(iteration.PhaseError)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(errors.ErrNotFound, "no incomplete iteration")
		}
		return nil, errors.Wrap(errors.ErrCheckpointUnavailable, err.Error())
	}
	return unmarshalState(payload)
}

func unmarshalState(payload []byte) (*iteration.WorkflowState, error) {
	var state iteration.WorkflowState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, errors.Wrap(err, "unmarshal workflow state")
	}
	return &state, nil
}
