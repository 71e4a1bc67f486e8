package mutation

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/cuemby/graphstore/pkg/gstypes"
)

// maxInlineStringBytes is the longest string value EncodeValue will pack
// directly into a property block; anything longer spills into a
// dynamic record chain.
const maxInlineStringBytes = 16

// propAdapter implements propchain.Context over a ChangeSet's property
// buffer and its owning primitive's chain-head field (a node's
// NextProp, a relationship's NextProp, or the graph singleton's
// NextProp). OwnerHead/SetOwnerHead assume the owning primitive's
// record is already staged in the relevant buffer — the mutation API's
// property methods stage it before calling into pkg/propchain, so this
// never needs to touch the store itself.
type propAdapter struct {
	cs *ChangeSet
}

func (a *propAdapter) LoadProperty(id int64) (*gstypes.PropertyRecord, error) {
	c, err := a.cs.Properties.GetOrLoad(id, nil)
	if err != nil {
		return nil, err
	}
	if err := c.EnsureHeavy(); err != nil {
		return nil, err
	}
	return c.ForChangingData(), nil
}

func (a *propAdapter) NewProperty(id int64, owner gstypes.Primitive) *gstypes.PropertyRecord {
	c := a.cs.Properties.Create(id, owner)
	return c.ForChangingData()
}

func (a *propAdapter) DeleteProperty(id int64) {
	c, ok := a.cs.Properties.GetIfLoaded(id)
	if !ok {
		return
	}
	c.ForChangingData().InUse = false
	c.MarkDeleted()
}

func (a *propAdapter) AllocatePropertyID() (int64, error) {
	return a.cs.store.NextPropertyID()
}

func (a *propAdapter) OwnerHead(owner gstypes.Primitive) int64 {
	switch owner.Kind {
	case gstypes.PrimitiveNode:
		c, ok := a.cs.Nodes.GetIfLoaded(owner.ID)
		if !ok {
			return gstypes.NoID
		}
		return c.ForReadingLinkage().NextProp
	case gstypes.PrimitiveRelationship:
		c, ok := a.cs.Relationships.GetIfLoaded(owner.ID)
		if !ok {
			return gstypes.NoID
		}
		return c.ForReadingLinkage().NextProp
	default:
		c, ok := a.cs.NeoStore.GetIfLoaded(neoStoreKey)
		if !ok {
			return gstypes.NoID
		}
		return c.ForReadingLinkage().NextProp
	}
}

func (a *propAdapter) SetOwnerHead(owner gstypes.Primitive, id int64) {
	switch owner.Kind {
	case gstypes.PrimitiveNode:
		c, _ := a.cs.Nodes.GetIfLoaded(owner.ID)
		c.ForChangingLinkage().NextProp = id
	case gstypes.PrimitiveRelationship:
		c, _ := a.cs.Relationships.GetIfLoaded(owner.ID)
		c.ForChangingLinkage().NextProp = id
	default:
		c, _ := a.cs.NeoStore.GetIfLoaded(neoStoreKey)
		c.ForChangingLinkage().NextProp = id
	}
}

// EncodeValue builds the block for value, allocating a dynamic record
// chain immediately (tracked on the ChangeSet for commit to persist)
// when the value doesn't fit inline: long strings and every array.
func (a *propAdapter) EncodeValue(keyID int32, value any) (gstypes.PropertyBlock, error) {
	switch v := value.(type) {
	case bool:
		b := byte(0)
		if v {
			b = 1
		}
		return gstypes.PropertyBlock{KeyID: keyID, Type: gstypes.PropertyTypeBool, Inline: []byte{b}, DynamicRecordID: gstypes.NoID}, nil

	case int:
		return a.EncodeValue(keyID, int64(v))

	case int64:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(v))
		return gstypes.PropertyBlock{KeyID: keyID, Type: gstypes.PropertyTypeInt, Inline: buf, DynamicRecordID: gstypes.NoID}, nil

	case float64:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(v))
		return gstypes.PropertyBlock{KeyID: keyID, Type: gstypes.PropertyTypeFloat, Inline: buf, DynamicRecordID: gstypes.NoID}, nil

	case string:
		if len(v) <= maxInlineStringBytes {
			return gstypes.PropertyBlock{KeyID: keyID, Type: gstypes.PropertyTypeShortString, Inline: []byte(v), DynamicRecordID: gstypes.NoID}, nil
		}
		records, err := a.cs.store.AllocateFrom([]byte(v), gstypes.DynamicString)
		if err != nil {
			return gstypes.PropertyBlock{}, err
		}
		a.cs.dynamicWrites = append(a.cs.dynamicWrites, records...)
		block := gstypes.PropertyBlock{KeyID: keyID, Type: gstypes.PropertyTypeString, DynamicRecordID: records[0].ID}
		block.SetValue(v)
		return block, nil

	case []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return gstypes.PropertyBlock{}, err
		}
		records, err := a.cs.store.AllocateFrom(raw, gstypes.DynamicArray)
		if err != nil {
			return gstypes.PropertyBlock{}, err
		}
		a.cs.dynamicWrites = append(a.cs.dynamicWrites, records...)
		block := gstypes.PropertyBlock{KeyID: keyID, Type: gstypes.PropertyTypeArray, DynamicRecordID: records[0].ID}
		block.SetValue(v)
		return block, nil

	default:
		return gstypes.PropertyBlock{}, fmt.Errorf("mutation: unsupported property value type %T", value)
	}
}

// FreeBlockValue stages the block's dynamic chain (if any) for freeing
// at commit; inline blocks carry nothing to free.
func (a *propAdapter) FreeBlockValue(block gstypes.PropertyBlock) error {
	if block.DynamicRecordID == gstypes.NoID {
		return nil
	}
	a.cs.dynamicFrees = append(a.cs.dynamicFrees, block.DynamicRecordID)
	return nil
}

func decodeLabelIDs(raw []byte) []int32 {
	ids := make([]int32, len(raw)/4)
	for i := range ids {
		ids[i] = int32(binary.BigEndian.Uint32(raw[i*4:]))
	}
	return ids
}

func encodeLabelIDs(ids []int32) []byte {
	buf := make([]byte, 4*len(ids))
	for i, id := range ids {
		binary.BigEndian.PutUint32(buf[i*4:], uint32(id))
	}
	return buf
}
