package gstypes

// PropertyRecordPayloadBytes is the fixed number of bytes of block
// payload a single property record can hold. It is deliberately small so
// that tests can exercise the "record is full, splice a new head"
// path without constructing huge values.
const PropertyRecordPayloadBytes = 32

// PropertyType tags the encoding of a PropertyBlock's value.
type PropertyType int

const (
	PropertyTypeBool PropertyType = iota
	PropertyTypeInt
	PropertyTypeFloat
	PropertyTypeShortString // fits inline
	PropertyTypeString      // spills to dynamic records
	PropertyTypeArray       // spills to dynamic records
)

// PropertyBlock is one key/value payload packed inside a PropertyRecord.
// Small values are encoded directly into Inline; oversized values (long
// strings, arrays) spill into a chain of DynamicRecords reachable from
// DynamicRecordID.
type PropertyBlock struct {
	KeyID           int32
	Type            PropertyType
	Inline          []byte
	DynamicRecordID int64 // NoID unless Type spills to dynamic records

	// cachedValue holds the decoded Go value once EnsureHeavy has
	// resolved any dynamic chain; nil until then. It is not part of the
	// persisted shape, only a load-time convenience.
	cachedValue any
	heavy       bool
}

// Size reports the number of payload bytes this block occupies inside
// its owning property record: a small fixed header plus the inline
// bytes. Dynamic-chain bytes do not count against record payload size.
func (b PropertyBlock) Size() int {
	const header = 8 // key id + type + dynamic pointer overhead
	return header + len(b.Inline)
}

// SetValue caches the decoded value and marks the block heavy (resolved)
// so readers don't need to ensure-heavy it again this transaction.
func (b *PropertyBlock) SetValue(v any) {
	b.cachedValue = v
	b.heavy = true
}

// Value returns the cached decoded value, if any has been resolved.
func (b *PropertyBlock) Value() (any, bool) {
	return b.cachedValue, b.heavy
}

// PrimitiveKind distinguishes the three owners a property chain can
// belong to.
type PrimitiveKind int

const (
	PrimitiveNode PrimitiveKind = iota
	PrimitiveRelationship
	PrimitiveGraph
)

// Primitive identifies a property chain owner: a node, a relationship,
// or the single graph-level (NeoStoreRecord) owner.
type Primitive struct {
	Kind PrimitiveKind
	ID   int64 // ignored for PrimitiveGraph
}

// PropertyRecord is one link in a primitive's property chain, packing
// 1..N blocks.
type PropertyRecord struct {
	ID      int64
	InUse   bool
	Created bool

	PrevProp int64
	NextProp int64

	Owner Primitive

	Blocks []PropertyBlock
}

// UsedBytes sums the payload contribution of every block currently in
// the record.
func (p *PropertyRecord) UsedBytes() int {
	total := 0
	for _, b := range p.Blocks {
		total += b.Size()
	}
	return total
}

// IndexOfKey returns the index of the block carrying the given property
// key, or -1.
func (p *PropertyRecord) IndexOfKey(keyID int32) int {
	for i, b := range p.Blocks {
		if b.KeyID == keyID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy suitable for a change buffer's BEFORE
// snapshot.
func (p *PropertyRecord) Clone() *PropertyRecord {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Blocks = make([]PropertyBlock, len(p.Blocks))
	for i, b := range p.Blocks {
		nb := b
		nb.Inline = append([]byte(nil), b.Inline...)
		cp.Blocks[i] = nb
	}
	return &cp
}
