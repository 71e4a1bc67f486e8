package propindex

import (
	"testing"

	"github.com/cuemby/graphstore/pkg/changebuf"
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyBatchResolvesNodeCommandByID(t *testing.T) {
	batch := NewLazyBatch(
		[]PropertyCommand{{After: &gstypes.PropertyRecord{ID: 1}, Mode: changebuf.ModeCreate}},
		map[int64]NodeCommand{7: {After: &gstypes.Node{ID: 7}, Mode: changebuf.ModeUpdate}},
	)

	nc, ok := batch.NodeCommand(7)
	require.True(t, ok)
	assert.Equal(t, int64(7), nc.After.ID)

	_, ok = batch.NodeCommand(8)
	assert.False(t, ok)

	assert.False(t, batch.Empty())
}

func TestEmptyBatchReportsEmpty(t *testing.T) {
	batch := NewLazyBatch(nil, nil)
	assert.True(t, batch.Empty())
}

func TestRecorderKeepsEveryBatch(t *testing.T) {
	r := NewRecorder()
	b1 := NewLazyBatch(nil, nil)
	b2 := NewLazyBatch(nil, nil)

	require.NoError(t, r.UpdateIndexes(b1))
	require.NoError(t, r.UpdateIndexes(b2))

	assert.Equal(t, []*LazyBatch{b1, b2}, r.Batches)
}
