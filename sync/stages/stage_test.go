package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckpointStoreRoundTrip(t *testing.T) {
	db := newMemDB()
	cp := NewCheckpointStore(db)
	ctx := context.Background()

	got, err := cp.Get(ctx, "Blocks")
	require.NoError(t, err)
	require.Zero(t, got)

	require.NoError(t, cp.Set(ctx, "Blocks", 42))
	got, err = cp.Get(ctx, "Blocks")
	require.NoError(t, err)
	require.EqualValues(t, 42, got)
}

type fakeStage struct {
	id       string
	executed []StageExecutionInput
	result   StageExecutionOutput
	err      error
}

func (s *fakeStage) ID() string { return s.id }

func (s *fakeStage) Execute(_ context.Context, input StageExecutionInput) (StageExecutionOutput, error) {
	s.executed = append(s.executed, input)
	return s.result, s.err
}

func TestPipelineRunOnceSkipsStagesAlreadyAtTip(t *testing.T) {
	db := newMemDB()
	cp := NewCheckpointStore(db)
	ctx := context.Background()
	require.NoError(t, cp.Set(ctx, "A", 10))

	a := &fakeStage{id: "A", result: StageExecutionOutput{LastBlockProcessed: 10}}
	b := &fakeStage{id: "B", result: StageExecutionOutput{LastBlockProcessed: 10}}
	p := NewPipeline(cp, a, b)

	require.NoError(t, p.RunOnce(ctx, 10))
	require.Empty(t, a.executed, "A is already at tip and should be skipped")
	require.Len(t, b.executed, 1)

	bCheckpoint, err := cp.Get(ctx, "B")
	require.NoError(t, err)
	require.EqualValues(t, 10, bCheckpoint)
}

func TestPipelineRunOncePersistsPartialProgressOnError(t *testing.T) {
	db := newMemDB()
	cp := NewCheckpointStore(db)
	ctx := context.Background()

	failing := &fakeStage{
		id:     "Blocks",
		result: StageExecutionOutput{LastBlockProcessed: 5},
		err:    context.DeadlineExceeded,
	}
	p := NewPipeline(cp, failing)

	err := p.RunOnce(ctx, 10)
	require.Error(t, err)

	checkpoint, cpErr := cp.Get(ctx, "Blocks")
	require.NoError(t, cpErr)
	require.EqualValues(t, 5, checkpoint, "progress made before the error must still be checkpointed")
}
