package gstypes

// LabelField holds a node's label set either inlined as a bitset (the
// common case, up to a handful of labels packed directly into the
// record) or spilled into a chain of dynamic records when it no longer
// fits inline.
type LabelField struct {
	Inline          bool
	Bits            uint64 // valid when Inline is true; bit N set means label token id N is present
	DynamicRecordID int64  // head of the dynamic label-array chain, valid when Inline is false
}

// MaxInlineLabelID is the highest label token id that can be packed
// into Bits. A label id beyond this, or a label set wider than fits
// legibly, forces the field out to a dynamic record chain.
const MaxInlineLabelID = 63

// InlineLabels decodes the bitset into a sorted slice of label ids. Only
// meaningful when Inline is true.
func (f LabelField) InlineLabels() []int32 {
	var out []int32
	for i := 0; i <= MaxInlineLabelID; i++ {
		if f.Bits&(1<<uint(i)) != 0 {
			out = append(out, int32(i))
		}
	}
	return out
}

// SetInlineLabels packs ids into Bits and marks the field inline. The
// caller is responsible for falling back to a dynamic chain when any id
// exceeds MaxInlineLabelID.
func (f *LabelField) SetInlineLabels(ids []int32) {
	var bits uint64
	for _, id := range ids {
		bits |= 1 << uint(id)
	}
	f.Inline = true
	f.Bits = bits
	f.DynamicRecordID = NoID
}

// Node is the fixed-shape node record. NextRel is the head of the node's
// relationship chain when the node is not dense, or the head of its
// relationship-group chain when Dense is true.
type Node struct {
	ID         int64
	InUse      bool
	Created    bool
	NextRel    int64
	NextProp   int64
	Labels     LabelField
	Dense      bool
}

// Clone returns a deep copy suitable for a change buffer's BEFORE
// snapshot.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}
