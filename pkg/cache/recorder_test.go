package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderCapturesCallsInOrder(t *testing.T) {
	r := NewRecorder()

	r.RemoveNodeFromCache(1)
	r.RemoveRelationshipFromCache(100)
	r.PatchDeletedRelationshipNodes(100, 1, -1, 2, -1)
	r.ApplyLabelUpdates([]NodeLabelUpdate{{NodeID: 1, Added: []int32{3}}})
	r.RemoveGraphPropertiesFromCache()

	assert.Equal(t, []int64{1}, r.RemovedNodes)
	assert.Equal(t, []int64{100}, r.RemovedRelationships)
	assert.Equal(t, []PatchedRelationship{{RelID: 100, FirstNode: 1, FirstNextRel: -1, SecondNode: 2, SecondNextRel: -1}}, r.PatchedRelationships)
	assert.Len(t, r.LabelUpdateBatches, 1)
	assert.Equal(t, 1, r.GraphPropsCleared)
}

func TestNoOpSatisfiesInvalidatorInterface(t *testing.T) {
	var inv Invalidator = NoOp{}
	inv.RemoveNodeFromCache(1)
}
