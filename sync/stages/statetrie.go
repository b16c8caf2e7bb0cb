package stages

import "context"

// StateTrie is the sync pipeline's third stage: spec §4.6 describes it as
// replaying state updates through the trie layer to recompute
// classes_root/contracts_root/state_root and persist new trie nodes plus
// history. As with Classes, the Blocks stage's BlockWriter call already
// performs this recomputation atomically alongside the block/tx/receipt
// insert (core/state/trie.Writer.ComputeStateRoot runs inside the same
// write transaction, spec §4.5 step 6) — StateTrie tracks its own
// checkpoint without re-walking the diff a second time.
type StateTrie struct {
	checkpoints *CheckpointStore
}

func NewStateTrie(checkpoints *CheckpointStore) *StateTrie {
	return &StateTrie{checkpoints: checkpoints}
}

func (s *StateTrie) ID() string { return StageIDStateTrie }

func (s *StateTrie) Execute(ctx context.Context, input StageExecutionInput) (StageExecutionOutput, error) {
	classesCheckpoint, err := s.checkpoints.Get(ctx, StageIDClasses)
	if err != nil {
		return StageExecutionOutput{}, err
	}
	last := input.To
	if classesCheckpoint < last {
		last = classesCheckpoint
	}
	return StageExecutionOutput{LastBlockProcessed: last}, nil
}
