package validate

import "github.com/cuemby/graphstore/pkg/gstypes"

// ValidateNodeRecord checks a node's label-field shape and the
// inline/dynamic boundary invariant: a field can't simultaneously carry
// inline bits and a dynamic chain pointer, and a non-inline field must
// actually point somewhere.
func ValidateNodeRecord(n *gstypes.Node) error {
	labels := n.Labels
	if labels.Inline {
		if labels.DynamicRecordID != gstypes.NoID {
			return &InvalidRecordError{Kind: "node", ID: n.ID, Detail: "inline label field also carries a dynamic record id"}
		}
		return nil
	}
	if labels.DynamicRecordID == gstypes.NoID {
		return &InvalidRecordError{Kind: "node", ID: n.ID, Detail: "non-inline label field has no dynamic record id"}
	}
	return nil
}
