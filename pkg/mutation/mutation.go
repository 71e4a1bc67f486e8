package mutation

import (
	"fmt"

	"github.com/cuemby/graphstore/pkg/chain"
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/propchain"
)

// maxInlineLabelCount caps how many label ids a node keeps inline
// before its label field spills to a dynamic record chain, independent
// of whether every individual id would still fit in the bitset.
const maxInlineLabelCount = 8

// CreateNode allocates and stages a new, empty node.
func (cs *ChangeSet) CreateNode() (*gstypes.Node, error) {
	id, err := cs.store.NextNodeID()
	if err != nil {
		return nil, err
	}
	c := cs.Nodes.Create(id, nil)
	n := c.ForChangingLinkage()
	n.ID = id
	n.InUse = true
	n.Created = true
	n.NextRel = gstypes.NoID
	n.NextProp = gstypes.NoID
	n.Labels.SetInlineLabels(nil)
	return n, nil
}

// DeleteNode stages node deletion. A node still carrying relationships
// cannot be deleted outright (callers must delete its relationships
// first), mirroring the source system's refusal to silently detach a
// node's edges.
func (cs *ChangeSet) DeleteNode(id int64) error {
	c, err := cs.Nodes.GetOrLoad(id, nil)
	if err != nil {
		return err
	}
	n := c.ForChangingLinkage()
	if !n.InUse {
		return &IllegalStateError{Op: "DeleteNode", Detail: fmt.Sprintf("node %d is already deleted", id)}
	}
	if n.NextRel != gstypes.NoID {
		return &IllegalStateError{Op: "DeleteNode", Detail: fmt.Sprintf("node %d still has relationships attached", id)}
	}
	n.InUse = false
	c.MarkDeleted()
	return nil
}

// CreateRelationship allocates a fresh relationship id and splices it
// into both endpoints' chains (or dense-node group buckets), upgrading
// either endpoint to dense first if this edge crosses the threshold.
func (cs *ChangeSet) CreateRelationship(relType int32, firstNode, secondNode int64) (*gstypes.Relationship, error) {
	id, err := cs.store.NextRelationshipID()
	if err != nil {
		return nil, err
	}
	return chain.CreateRelationship(cs.chain, id, relType, firstNode, secondNode)
}

// DeleteRelationship unsplices relID from every chain side it
// participates in.
func (cs *ChangeSet) DeleteRelationship(relID int64) error {
	return chain.DeleteRelationship(cs.chain, relID)
}

func (cs *ChangeSet) stageNode(nodeID int64, op string) (*gstypes.Node, error) {
	c, err := cs.Nodes.GetOrLoad(nodeID, nil)
	if err != nil {
		return nil, err
	}
	n := c.ForChangingLinkage()
	if !n.InUse {
		return nil, &IllegalStateError{Op: op, Detail: fmt.Sprintf("node %d is deleted", nodeID)}
	}
	return n, nil
}

func (cs *ChangeSet) stageRelationship(relID int64, op string) (*gstypes.Relationship, error) {
	c, err := cs.Relationships.GetOrLoad(relID, nil)
	if err != nil {
		return nil, err
	}
	r := c.ForChangingLinkage()
	if !r.InUse {
		return nil, &IllegalStateError{Op: op, Detail: fmt.Sprintf("relationship %d is deleted", relID)}
	}
	return r, nil
}

func (cs *ChangeSet) stageNeoStore() {
	cs.NeoStore.GetOrLoad(neoStoreKey, nil) //nolint:errcheck // the singleton loader never errors
}

// AddNodeProperty adds a property to a node.
func (cs *ChangeSet) AddNodeProperty(nodeID int64, keyID int32, value any) error {
	if _, err := cs.stageNode(nodeID, "AddNodeProperty"); err != nil {
		return err
	}
	return propchain.AddProperty(cs.prop, gstypes.Primitive{Kind: gstypes.PrimitiveNode, ID: nodeID}, keyID, value)
}

// ChangeNodeProperty replaces the value of an existing node property.
func (cs *ChangeSet) ChangeNodeProperty(nodeID int64, keyID int32, value any) error {
	if _, err := cs.stageNode(nodeID, "ChangeNodeProperty"); err != nil {
		return err
	}
	return propchain.ChangeProperty(cs.prop, gstypes.Primitive{Kind: gstypes.PrimitiveNode, ID: nodeID}, keyID, value)
}

// RemoveNodeProperty removes a property from a node.
func (cs *ChangeSet) RemoveNodeProperty(nodeID int64, keyID int32) error {
	if _, err := cs.stageNode(nodeID, "RemoveNodeProperty"); err != nil {
		return err
	}
	return propchain.RemoveProperty(cs.prop, gstypes.Primitive{Kind: gstypes.PrimitiveNode, ID: nodeID}, keyID)
}

// AddRelationshipProperty adds a property to a relationship.
func (cs *ChangeSet) AddRelationshipProperty(relID int64, keyID int32, value any) error {
	if _, err := cs.stageRelationship(relID, "AddRelationshipProperty"); err != nil {
		return err
	}
	return propchain.AddProperty(cs.prop, gstypes.Primitive{Kind: gstypes.PrimitiveRelationship, ID: relID}, keyID, value)
}

// ChangeRelationshipProperty replaces the value of an existing
// relationship property.
func (cs *ChangeSet) ChangeRelationshipProperty(relID int64, keyID int32, value any) error {
	if _, err := cs.stageRelationship(relID, "ChangeRelationshipProperty"); err != nil {
		return err
	}
	return propchain.ChangeProperty(cs.prop, gstypes.Primitive{Kind: gstypes.PrimitiveRelationship, ID: relID}, keyID, value)
}

// RemoveRelationshipProperty removes a property from a relationship.
func (cs *ChangeSet) RemoveRelationshipProperty(relID int64, keyID int32) error {
	if _, err := cs.stageRelationship(relID, "RemoveRelationshipProperty"); err != nil {
		return err
	}
	return propchain.RemoveProperty(cs.prop, gstypes.Primitive{Kind: gstypes.PrimitiveRelationship, ID: relID}, keyID)
}

// AddGraphProperty adds a property to the graph-level singleton.
func (cs *ChangeSet) AddGraphProperty(keyID int32, value any) error {
	cs.stageNeoStore()
	return propchain.AddProperty(cs.prop, gstypes.Primitive{Kind: gstypes.PrimitiveGraph}, keyID, value)
}

// ChangeGraphProperty replaces the value of an existing graph-level
// property.
func (cs *ChangeSet) ChangeGraphProperty(keyID int32, value any) error {
	cs.stageNeoStore()
	return propchain.ChangeProperty(cs.prop, gstypes.Primitive{Kind: gstypes.PrimitiveGraph}, keyID, value)
}

// RemoveGraphProperty removes a property from the graph-level
// singleton.
func (cs *ChangeSet) RemoveGraphProperty(keyID int32) error {
	cs.stageNeoStore()
	return propchain.RemoveProperty(cs.prop, gstypes.Primitive{Kind: gstypes.PrimitiveGraph}, keyID)
}

// AddLabel adds labelID to node's label set, a no-op if it's already
// present. Labels stay inline while both the count and every member id
// fit; otherwise the set spills into a dynamic record chain, freeing
// whichever representation the node carried before.
func (cs *ChangeSet) AddLabel(nodeID int64, labelID int32) error {
	n, err := cs.stageNode(nodeID, "AddLabel")
	if err != nil {
		return err
	}
	ids, err := cs.resolveNodeLabels(n)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == labelID {
			return nil
		}
	}
	return cs.setNodeLabels(n, append(ids, labelID))
}

// RemoveLabel removes labelID from node's label set, a no-op if it
// wasn't present.
func (cs *ChangeSet) RemoveLabel(nodeID int64, labelID int32) error {
	n, err := cs.stageNode(nodeID, "RemoveLabel")
	if err != nil {
		return err
	}
	ids, err := cs.resolveNodeLabels(n)
	if err != nil {
		return err
	}
	out := ids[:0]
	found := false
	for _, id := range ids {
		if id == labelID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		return nil
	}
	return cs.setNodeLabels(n, out)
}

func (cs *ChangeSet) resolveNodeLabels(n *gstypes.Node) ([]int32, error) {
	ids, ok := cs.ResolveLabels(n.Labels)
	if !ok {
		return nil, &IllegalStateError{Detail: fmt.Sprintf("node %d's label chain is not resolvable", n.ID)}
	}
	return ids, nil
}

func (cs *ChangeSet) setNodeLabels(n *gstypes.Node, ids []int32) error {
	fitsInline := len(ids) <= maxInlineLabelCount
	if fitsInline {
		for _, id := range ids {
			if id > gstypes.MaxInlineLabelID {
				fitsInline = false
				break
			}
		}
	}

	var oldDynamicHead int64 = gstypes.NoID
	if !n.Labels.Inline {
		oldDynamicHead = n.Labels.DynamicRecordID
	}

	if fitsInline {
		n.Labels.SetInlineLabels(ids)
	} else {
		records, err := cs.store.AllocateFrom(encodeLabelIDs(ids), gstypes.DynamicLabelArray)
		if err != nil {
			return err
		}
		cs.dynamicWrites = append(cs.dynamicWrites, records...)
		n.Labels.Inline = false
		n.Labels.Bits = 0
		n.Labels.DynamicRecordID = records[0].ID
	}

	if oldDynamicHead != gstypes.NoID {
		cs.dynamicFrees = append(cs.dynamicFrees, oldDynamicHead)
	}
	return nil
}

// GetOrCreateToken returns the existing token named name in kind's
// namespace, whether it was committed by an earlier transaction or
// already staged earlier in this one, or stages a brand-new one.
func (cs *ChangeSet) GetOrCreateToken(kind gstypes.TokenKind, name string) (*gstypes.TokenRecord, error) {
	buf := cs.tokenBuffer(kind)
	for _, c := range buf.Changes() {
		t := c.ForReadingData()
		if t.InUse && t.Name == name {
			return t, nil
		}
	}

	existing, err := cs.store.FindTokenByName(kind, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id, err := cs.store.NextTokenID(kind)
	if err != nil {
		return nil, err
	}
	records, err := cs.store.AllocateFrom([]byte(name), gstypes.DynamicTokenName)
	if err != nil {
		return nil, err
	}
	cs.dynamicWrites = append(cs.dynamicWrites, records...)

	c := buf.Create(id, nil)
	t := c.ForChangingData()
	t.ID = id
	t.InUse = true
	t.Created = true
	t.Kind = kind
	t.Name = name
	t.NameRecordID = records[0].ID
	return t, nil
}

// CreateSchemaRule stages a new schema rule, serializing its structured
// fields into a dynamic record chain the way the store persists every
// schema rule.
func (cs *ChangeSet) CreateSchemaRule(kind gstypes.SchemaRuleKind, labelID, propertyKeyID int32) (*gstypes.SchemaRuleRecord, error) {
	id, err := cs.store.NextSchemaRuleID()
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 9)
	payload[0] = byte(kind)
	encodeInt32(payload[1:5], labelID)
	encodeInt32(payload[5:9], propertyKeyID)
	records, err := cs.store.AllocateFrom(payload, gstypes.DynamicSchema)
	if err != nil {
		return nil, err
	}
	cs.dynamicWrites = append(cs.dynamicWrites, records...)

	c := cs.SchemaRules.Create(id, nil)
	r := c.ForChangingData()
	r.ID = id
	r.Kind = kind
	r.LabelID = labelID
	r.PropertyKeyID = propertyKeyID
	r.DynamicRecords = records
	return r, nil
}

// DropSchemaRule stages a schema rule's removal, freeing its backing
// dynamic record chain at commit.
func (cs *ChangeSet) DropSchemaRule(id int64) error {
	c, err := cs.SchemaRules.GetOrLoad(id, nil)
	if err != nil {
		return err
	}
	r := c.ForChangingData()
	for _, d := range r.DynamicRecords {
		cs.dynamicFrees = append(cs.dynamicFrees, d.ID)
	}
	c.MarkDeleted()
	return nil
}

func encodeInt32(buf []byte, v int32) {
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
}
