package propchain

import "github.com/cuemby/graphstore/pkg/gstypes"

// Context is everything the property-chain operators need: staged
// property-record access, the owning primitive's chain-head pointer,
// and value encode/free (which may allocate or free a dynamic record
// chain for oversized values). pkg/mutation implements this over its
// changebuf.RecordChanges[int64, *gstypes.PropertyRecord] buffer and
// pkg/store's dynamic record allocator.
type Context interface {
	LoadProperty(id int64) (*gstypes.PropertyRecord, error)
	NewProperty(id int64, owner gstypes.Primitive) *gstypes.PropertyRecord
	DeleteProperty(id int64)

	AllocatePropertyID() (int64, error)

	// OwnerHead returns the primitive's current property-chain head
	// (node.nextProp, relationship.nextProp, or the neostore
	// singleton's nextProp).
	OwnerHead(owner gstypes.Primitive) int64
	SetOwnerHead(owner gstypes.Primitive, id int64)

	// EncodeValue builds the block for value under keyID, allocating a
	// dynamic record chain immediately if the value doesn't fit inline.
	EncodeValue(keyID int32, value any) (gstypes.PropertyBlock, error)

	// FreeBlockValue marks a superseded or removed block's dynamic
	// value records not-in-use, a no-op for inline blocks.
	FreeBlockValue(block gstypes.PropertyBlock) error
}
