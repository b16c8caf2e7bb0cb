package stages

import (
	"context"
)

// Classes is the sync pipeline's second stage: spec §4.6 describes it as
// downloading declared class bodies for the newly-ingested block range and
// inserting them into the classes table. In this port that insertion
// already happens inside the Blocks stage's single BlockWriter call (the
// same atomic write the live block producer uses for its own sealed
// blocks, spec §4.5 step 6) — there is no separate class-body fetch to
// perform, since BlockData's StateDiff already carries the declared
// classes the gateway would otherwise return from a second endpoint.
//
// Classes therefore exists to preserve the pipeline's three-stage
// checkpointing contract (spec §4.6 "after each stage commits ... it
// writes checkpoint(stage_id)") without redoing work Blocks already
// committed durably: it is a pass-through stage that simply advances its
// own checkpoint to whatever Blocks most recently reached.
type Classes struct {
	checkpoints *CheckpointStore
}

func NewClasses(checkpoints *CheckpointStore) *Classes {
	return &Classes{checkpoints: checkpoints}
}

func (c *Classes) ID() string { return StageIDClasses }

func (c *Classes) Execute(ctx context.Context, input StageExecutionInput) (StageExecutionOutput, error) {
	blocksCheckpoint, err := c.checkpoints.Get(ctx, StageIDBlocks)
	if err != nil {
		return StageExecutionOutput{}, err
	}
	last := input.To
	if blocksCheckpoint < last {
		last = blocksCheckpoint
	}
	return StageExecutionOutput{LastBlockProcessed: last}, nil
}
