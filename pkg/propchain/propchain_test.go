package propchain

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type primKey struct {
	kind gstypes.PrimitiveKind
	id   int64
}

type fakeContext struct {
	props    map[int64]*gstypes.PropertyRecord
	heads    map[primKey]int64
	dynamics map[int64][]byte
	nextPID  int64
	nextDID  int64
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		props:    make(map[int64]*gstypes.PropertyRecord),
		heads:    make(map[primKey]int64),
		dynamics: make(map[int64][]byte),
	}
}

func key(owner gstypes.Primitive) primKey { return primKey{owner.Kind, owner.ID} }

func (c *fakeContext) OwnerHead(owner gstypes.Primitive) int64 {
	id, ok := c.heads[key(owner)]
	if !ok {
		return gstypes.NoID
	}
	return id
}

func (c *fakeContext) SetOwnerHead(owner gstypes.Primitive, id int64) {
	c.heads[key(owner)] = id
}

func (c *fakeContext) LoadProperty(id int64) (*gstypes.PropertyRecord, error) {
	rec, ok := c.props[id]
	if !ok {
		return nil, fmt.Errorf("property %d not found", id)
	}
	return rec, nil
}

func (c *fakeContext) NewProperty(id int64, owner gstypes.Primitive) *gstypes.PropertyRecord {
	rec := &gstypes.PropertyRecord{ID: id, Owner: owner}
	c.props[id] = rec
	return rec
}

func (c *fakeContext) DeleteProperty(id int64) {
	c.props[id].InUse = false
}

func (c *fakeContext) AllocatePropertyID() (int64, error) {
	c.nextPID++
	return c.nextPID, nil
}

func (c *fakeContext) EncodeValue(keyID int32, value any) (gstypes.PropertyBlock, error) {
	switch v := value.(type) {
	case int64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(v))
		return gstypes.PropertyBlock{KeyID: keyID, Type: gstypes.PropertyTypeInt, Inline: b, DynamicRecordID: gstypes.NoID}, nil
	case string:
		if len(v) <= 16 {
			return gstypes.PropertyBlock{KeyID: keyID, Type: gstypes.PropertyTypeShortString, Inline: []byte(v), DynamicRecordID: gstypes.NoID}, nil
		}
		c.nextDID++
		c.dynamics[c.nextDID] = []byte(v)
		return gstypes.PropertyBlock{KeyID: keyID, Type: gstypes.PropertyTypeString, DynamicRecordID: c.nextDID}, nil
	default:
		return gstypes.PropertyBlock{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func (c *fakeContext) FreeBlockValue(block gstypes.PropertyBlock) error {
	if block.DynamicRecordID != gstypes.NoID {
		delete(c.dynamics, block.DynamicRecordID)
	}
	return nil
}

func nodeOwner(id int64) gstypes.Primitive { return gstypes.Primitive{Kind: gstypes.PrimitiveNode, ID: id} }

func TestAddPropertyCreatesHeadRecord(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)

	require.NoError(t, AddProperty(ctx, owner, 10, int64(42)))

	headID := ctx.OwnerHead(owner)
	require.NotEqual(t, gstypes.NoID, headID)
	head, err := ctx.LoadProperty(headID)
	require.NoError(t, err)
	assert.True(t, head.InUse)
	assert.Equal(t, gstypes.NoID, head.PrevProp)
	assert.Equal(t, gstypes.NoID, head.NextProp)
	require.Len(t, head.Blocks, 1)
	assert.Equal(t, int32(10), head.Blocks[0].KeyID)
}

func TestAddPropertySplicesNewHeadWhenRecordFull(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)

	// Each short-string block of 16 bytes costs header(8)+16=24 bytes;
	// payload is 32, so a second same-size block doesn't fit (48 > 32)
	// and must start a new head record.
	require.NoError(t, AddProperty(ctx, owner, 1, "0123456789012345"))
	firstHeadID := ctx.OwnerHead(owner)

	require.NoError(t, AddProperty(ctx, owner, 2, "5432109876543210"))
	secondHeadID := ctx.OwnerHead(owner)

	assert.NotEqual(t, firstHeadID, secondHeadID, "second block must have spliced a new head")

	newHead, err := ctx.LoadProperty(secondHeadID)
	require.NoError(t, err)
	assert.Equal(t, firstHeadID, newHead.NextProp)

	oldHead, err := ctx.LoadProperty(firstHeadID)
	require.NoError(t, err)
	assert.Equal(t, secondHeadID, oldHead.PrevProp)
}

func TestAddPropertyAppendsToHeadWhenRoom(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)

	require.NoError(t, AddProperty(ctx, owner, 1, int64(1)))
	headBefore := ctx.OwnerHead(owner)
	require.NoError(t, AddProperty(ctx, owner, 2, int64(2)))
	headAfter := ctx.OwnerHead(owner)

	assert.Equal(t, headBefore, headAfter, "small blocks should share one record")
	head, err := ctx.LoadProperty(headAfter)
	require.NoError(t, err)
	assert.Len(t, head.Blocks, 2)
}

func TestChangePropertyUnknownKeyFails(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)
	require.NoError(t, AddProperty(ctx, owner, 1, int64(1)))

	err := ChangeProperty(ctx, owner, 99, int64(2))
	var unknown *UnknownPropertyError
	require.ErrorAs(t, err, &unknown)
}

func TestChangePropertyInPlace(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)
	require.NoError(t, AddProperty(ctx, owner, 1, int64(1)))

	require.NoError(t, ChangeProperty(ctx, owner, 1, int64(99)))

	rec, idx, err := findBlock(ctx, owner, 1)
	require.NoError(t, err)
	v := int64(binary.BigEndian.Uint64(rec.Blocks[idx].Inline))
	assert.Equal(t, int64(99), v)
}

func TestChangePropertyFreesOldDynamicChain(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)
	require.NoError(t, AddProperty(ctx, owner, 1, "this value is long enough to spill"))
	assert.Len(t, ctx.dynamics, 1)

	require.NoError(t, ChangeProperty(ctx, owner, 1, int64(5)))
	assert.Empty(t, ctx.dynamics, "old dynamic chain must be freed")
}

func TestRemovePropertyUnlinksEmptyRecord(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)
	require.NoError(t, AddProperty(ctx, owner, 1, int64(1)))
	headID := ctx.OwnerHead(owner)

	require.NoError(t, RemoveProperty(ctx, owner, 1))

	assert.Equal(t, gstypes.NoID, ctx.OwnerHead(owner))
	assert.False(t, ctx.props[headID].InUse)
}

func TestRemovePropertyLeavesRecordWithOtherBlocks(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)
	require.NoError(t, AddProperty(ctx, owner, 1, int64(1)))
	require.NoError(t, AddProperty(ctx, owner, 2, int64(2)))
	headID := ctx.OwnerHead(owner)

	require.NoError(t, RemoveProperty(ctx, owner, 1))

	assert.Equal(t, headID, ctx.OwnerHead(owner))
	head, err := ctx.LoadProperty(headID)
	require.NoError(t, err)
	assert.Len(t, head.Blocks, 1)
	assert.Equal(t, int32(2), head.Blocks[0].KeyID)
}

func TestAssertPropertyChainPassesOnWellFormedChain(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)
	require.NoError(t, AddProperty(ctx, owner, 1, "0123456789012345"))
	require.NoError(t, AddProperty(ctx, owner, 2, "5432109876543210"))

	assert.NoError(t, AssertPropertyChain(ctx, owner))
}

func TestAssertPropertyChainCatchesBrokenLink(t *testing.T) {
	ctx := newFakeContext()
	owner := nodeOwner(1)
	require.NoError(t, AddProperty(ctx, owner, 1, "0123456789012345"))
	require.NoError(t, AddProperty(ctx, owner, 2, "5432109876543210"))

	headID := ctx.OwnerHead(owner)
	head, _ := ctx.LoadProperty(headID)
	head.NextProp = 9999 // corrupt the link

	err := AssertPropertyChain(ctx, owner)
	require.Error(t, err)
}
