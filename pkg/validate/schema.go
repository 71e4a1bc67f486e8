package validate

import "github.com/cuemby/graphstore/pkg/gstypes"

// ValidateSchemaRule checks a schema rule's structural well-formedness:
// a known kind and real label/property-key token references.
func ValidateSchemaRule(r *gstypes.SchemaRuleRecord) error {
	switch r.Kind {
	case gstypes.SchemaRuleIndex, gstypes.SchemaRuleUniquenessConstraint:
	default:
		return &InvalidRecordError{Kind: "schema rule", ID: r.ID, Detail: "unknown rule kind"}
	}
	if r.LabelID == gstypes.NoToken {
		return &InvalidRecordError{Kind: "schema rule", ID: r.ID, Detail: "missing label token reference"}
	}
	if r.PropertyKeyID == gstypes.NoToken {
		return &InvalidRecordError{Kind: "schema rule", ID: r.ID, Detail: "missing property key token reference"}
	}
	for _, dr := range r.DynamicRecords {
		if !dr.InUse {
			return &InvalidRecordError{Kind: "schema rule", ID: r.ID, Detail: "serialized dynamic record not in use"}
		}
	}
	return nil
}
