package labelindex

import (
	"sort"

	"github.com/cuemby/graphstore/pkg/gstypes"
)

// NodeLabelUpdate is a node id plus its label set before and after the
// change.
type NodeLabelUpdate struct {
	NodeID int64
	Before []int32
	After  []int32
}

// NodeLabelChange is one node command's before/after label field, as
// seen by extraction. Before is nil for created nodes.
type NodeLabelChange struct {
	NodeID int64
	Before *gstypes.LabelField
	After  gstypes.LabelField
}

// Resolver resolves the label ids encoded in a field, reading the
// dynamic label-array chain when the field isn't inline. ok is false
// when the chain is lazily-loaded and not available, in which case
// extraction must skip the node rather than report a wrong diff.
type Resolver interface {
	ResolveLabels(f gstypes.LabelField) (ids []int32, ok bool)
}

// Extract builds the sorted label-update batch for one commit's node
// commands. A node whose before and after fields are both inline and
// bit-identical is skipped (no label change occurred); a node whose
// labels can't be resolved on either side is skipped rather than
// reported with a wrong diff. The result is sorted by node id per
// an append-friendly ordering for the underlying index writer.
func Extract(changes []NodeLabelChange, resolver Resolver) []NodeLabelUpdate {
	var out []NodeLabelUpdate
	for _, c := range changes {
		var before gstypes.LabelField
		hasBefore := c.Before != nil
		if hasBefore {
			before = *c.Before
		}

		if hasBefore && before.Inline && c.After.Inline && before.Bits == c.After.Bits {
			continue
		}

		var beforeIDs []int32
		if hasBefore {
			ids, ok := resolver.ResolveLabels(before)
			if !ok {
				continue
			}
			beforeIDs = ids
		}
		afterIDs, ok := resolver.ResolveLabels(c.After)
		if !ok {
			continue
		}

		if hasBefore && sameIDs(beforeIDs, afterIDs) {
			continue
		}

		out = append(out, NodeLabelUpdate{NodeID: c.NodeID, Before: beforeIDs, After: afterIDs})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

func sameIDs(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int32]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
