package iteration

import "context"

// CheckpointRepository persists the full workflow state keyed by iteration
// id. Save overwrites; Load returns errors.ErrNotFound when no checkpoint
// exists for the id.
type CheckpointRepository interface {
	Save(ctx context.Context, state *WorkflowState) error
	Load(ctx context.Context, iterationID string) (*WorkflowState, error)
	// LatestIncomplete returns the most recent checkpoint whose phase is not
	// terminal, or errors.ErrNotFound when everything has finished.
	LatestIncomplete(ctx context.Context) (*WorkflowState, error)
}
