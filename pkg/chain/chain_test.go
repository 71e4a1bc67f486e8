package chain

import (
	"fmt"
	"testing"

	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContext is a minimal in-memory Context for exercising chain
// operators directly, without a store or change buffer underneath.
type fakeContext struct {
	nodes          map[int64]*gstypes.Node
	relationships  map[int64]*gstypes.Relationship
	groups         map[int64]*gstypes.RelationshipGroup
	groupByOwnerType map[[2]int64]int64 // [ownerNode, int64(relType)] -> group id
	nextGroupID    int64
	threshold      int
	upgraded       []int64
	lockedRels     []int64
}

func newFakeContext(threshold int) *fakeContext {
	return &fakeContext{
		nodes:            make(map[int64]*gstypes.Node),
		relationships:    make(map[int64]*gstypes.Relationship),
		groups:           make(map[int64]*gstypes.RelationshipGroup),
		groupByOwnerType: make(map[[2]int64]int64),
		threshold:        threshold,
	}
}

func (c *fakeContext) addNode(id int64) *gstypes.Node {
	n := &gstypes.Node{ID: id, InUse: true, NextRel: gstypes.NoID, NextProp: gstypes.NoID}
	c.nodes[id] = n
	return n
}

func (c *fakeContext) LoadNode(id int64) (*gstypes.Node, error) {
	n, ok := c.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %d not found", id)
	}
	return n, nil
}

func (c *fakeContext) LoadRelationship(id int64) (*gstypes.Relationship, error) {
	r, ok := c.relationships[id]
	if !ok {
		return nil, fmt.Errorf("relationship %d not found", id)
	}
	return r, nil
}

func (c *fakeContext) NewRelationship(id int64) *gstypes.Relationship {
	r := &gstypes.Relationship{ID: id}
	c.relationships[id] = r
	return r
}

func (c *fakeContext) DeleteRelationship(id int64) {
	c.relationships[id].InUse = false
}

func (c *fakeContext) LoadGroup(id int64) (*gstypes.RelationshipGroup, error) {
	g, ok := c.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %d not found", id)
	}
	return g, nil
}

func (c *fakeContext) NewGroup(id int64, owningNode int64, relType int32) *gstypes.RelationshipGroup {
	g := &gstypes.RelationshipGroup{ID: id, InUse: true, Created: true, OwningNode: owningNode, Type: relType}
	c.groups[id] = g
	c.groupByOwnerType[[2]int64{owningNode, int64(relType)}] = id
	return g
}

func (c *fakeContext) DeleteGroup(id int64) {
	delete(c.groups, id)
	for k, v := range c.groupByOwnerType {
		if v == id {
			delete(c.groupByOwnerType, k)
		}
	}
}

func (c *fakeContext) AllocateGroupID() (int64, error) {
	c.nextGroupID++
	return c.nextGroupID, nil
}

func (c *fakeContext) FindGroup(ownerNode int64, relType int32) (int64, bool, error) {
	id, ok := c.groupByOwnerType[[2]int64{ownerNode, int64(relType)}]
	return id, ok, nil
}

func (c *fakeContext) LockRelationship(id int64) error {
	c.lockedRels = append(c.lockedRels, id)
	return nil
}

func (c *fakeContext) DenseThreshold() int { return c.threshold }

func (c *fakeContext) NotifyDenseUpgrade(nodeID int64) {
	c.upgraded = append(c.upgraded, nodeID)
}

func TestCreateRelationshipSplicesBothEndpoints(t *testing.T) {
	ctx := newFakeContext(50)
	ctx.addNode(1)
	ctx.addNode(2)

	rel, err := CreateRelationship(ctx, 100, 5, 1, 2)
	require.NoError(t, err)

	assert.True(t, rel.InUse)
	assert.Equal(t, int64(100), ctx.nodes[1].NextRel)
	assert.Equal(t, int64(100), ctx.nodes[2].NextRel)
	assert.True(t, rel.FirstInFirstChain)
	assert.True(t, rel.FirstInSecondChain)
	assert.Equal(t, int64(1), rel.FirstPrevRel)
	assert.Equal(t, int64(1), rel.SecondPrevRel)
}

func TestCreateSecondRelationshipBecomesNewHead(t *testing.T) {
	ctx := newFakeContext(50)
	ctx.addNode(1)
	ctx.addNode(2)
	ctx.addNode(3)

	r1, err := CreateRelationship(ctx, 100, 5, 1, 2)
	require.NoError(t, err)
	r2, err := CreateRelationship(ctx, 101, 5, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(101), ctx.nodes[1].NextRel)
	assert.Equal(t, int64(2), r2.FirstPrevRel, "new head carries chain length 2")
	assert.Equal(t, int64(100), r2.FirstNextRel)
	assert.False(t, r1.FirstInFirstChain, "old head demoted")
	assert.Equal(t, int64(101), r1.FirstPrevRel, "old head's prev now points at new head")
}

func TestLoopRelationshipSplicesOnce(t *testing.T) {
	ctx := newFakeContext(50)
	ctx.addNode(1)

	rel, err := CreateRelationship(ctx, 100, 9, 1, 1)
	require.NoError(t, err)

	assert.True(t, rel.IsLoop())
	assert.True(t, rel.FirstInFirstChain)
	assert.False(t, rel.FirstInSecondChain)
	assert.Equal(t, rel.FirstPrevRel, rel.SecondPrevRel)
}

func TestDeleteOnlyRelationshipEmptiesChain(t *testing.T) {
	ctx := newFakeContext(50)
	ctx.addNode(1)
	ctx.addNode(2)
	_, err := CreateRelationship(ctx, 100, 5, 1, 2)
	require.NoError(t, err)

	require.NoError(t, DeleteRelationship(ctx, 100))

	assert.Equal(t, gstypes.NoID, ctx.nodes[1].NextRel)
	assert.Equal(t, gstypes.NoID, ctx.nodes[2].NextRel)
	assert.False(t, ctx.relationships[100].InUse)
}

func TestDeleteHeadPromotesNextToHead(t *testing.T) {
	ctx := newFakeContext(50)
	ctx.addNode(1)
	ctx.addNode(2)
	ctx.addNode(3)
	_, err := CreateRelationship(ctx, 100, 5, 1, 2)
	require.NoError(t, err)
	_, err = CreateRelationship(ctx, 101, 5, 1, 3)
	require.NoError(t, err)

	require.NoError(t, DeleteRelationship(ctx, 101))

	assert.Equal(t, int64(100), ctx.nodes[1].NextRel)
	r1 := ctx.relationships[100]
	assert.True(t, r1.FirstInFirstChain)
	assert.Equal(t, int64(1), r1.FirstPrevRel, "new head's count decremented to 1")
	assert.Equal(t, gstypes.NoID, r1.FirstNextRel)
}

func TestDeleteMiddleRelationshipPatchesNeighborsAndDecrementsHeadCount(t *testing.T) {
	ctx := newFakeContext(50)
	ctx.addNode(1)
	for i := int64(2); i <= 4; i++ {
		ctx.addNode(i)
	}
	_, err := CreateRelationship(ctx, 100, 5, 1, 2) // oldest
	require.NoError(t, err)
	_, err = CreateRelationship(ctx, 101, 5, 1, 3) // middle
	require.NoError(t, err)
	_, err = CreateRelationship(ctx, 102, 5, 1, 4) // head
	require.NoError(t, err)

	require.NoError(t, DeleteRelationship(ctx, 101))

	head := ctx.relationships[102]
	assert.Equal(t, int64(2), head.FirstPrevRel, "head count shrank from 3 to 2")
	assert.Equal(t, int64(100), head.FirstNextRel, "head now points past the deleted middle record")

	tail := ctx.relationships[100]
	assert.Equal(t, int64(102), tail.FirstPrevRel, "tail's prev now points at head, skipping deleted record")
}

func TestDenseUpgradeMovesChainIntoGroupBuckets(t *testing.T) {
	ctx := newFakeContext(2)
	ctx.addNode(1)
	ctx.addNode(2)
	ctx.addNode(3)
	ctx.addNode(4)

	_, err := CreateRelationship(ctx, 100, 5, 1, 2)
	require.NoError(t, err)
	_, err = CreateRelationship(ctx, 101, 5, 1, 3)
	require.NoError(t, err)
	// third edge on node 1 crosses the threshold of 2.
	_, err = CreateRelationship(ctx, 102, 5, 1, 4)
	require.NoError(t, err)

	assert.True(t, ctx.nodes[1].Dense)
	assert.Contains(t, ctx.upgraded, int64(1))

	groupID, ok, err := ctx.FindGroup(1, 5)
	require.NoError(t, err)
	require.True(t, ok)
	group := ctx.groups[groupID]
	assert.Equal(t, int64(102), group.FirstOut, "most recently created edge heads the bucket")
}

func TestDeleteFromDenseNodeUnlinksEmptyGroup(t *testing.T) {
	ctx := newFakeContext(1)
	ctx.addNode(1)
	ctx.addNode(2)
	ctx.addNode(3)

	_, err := CreateRelationship(ctx, 100, 5, 1, 2)
	require.NoError(t, err)
	_, err = CreateRelationship(ctx, 101, 5, 1, 3)
	require.NoError(t, err)
	require.True(t, ctx.nodes[1].Dense)

	require.NoError(t, DeleteRelationship(ctx, 100))
	require.NoError(t, DeleteRelationship(ctx, 101))

	_, ok, err := ctx.FindGroup(1, 5)
	require.NoError(t, err)
	assert.False(t, ok, "group with all-empty buckets must be unlinked")
	assert.Equal(t, gstypes.NoID, ctx.nodes[1].NextRel)
}

func TestCreateRelationshipRejectsDeletedNode(t *testing.T) {
	ctx := newFakeContext(50)
	n := ctx.addNode(1)
	n.InUse = false
	ctx.addNode(2)

	_, err := CreateRelationship(ctx, 100, 5, 1, 2)
	require.Error(t, err)
	var deletedErr *EntityDeletedError
	assert.ErrorAs(t, err, &deletedErr)
}
