package mutation

import "github.com/cuemby/graphstore/pkg/gstypes"

// LockRelationship acquires a per-relationship mutex on id through the
// change set's lock group, held until the transaction commits or rolls
// back.
func (a *chainAdapter) LockRelationship(id int64) error {
	return a.cs.lockGroup.Relationship(id)
}

// chainAdapter implements chain.Context over a ChangeSet's node,
// relationship, and relationship-group buffers. It is the only thing
// in this package that calls into pkg/chain; every record it hands
// back is a live pointer into the change buffer, so pkg/chain's
// surgery is visible to the rest of this transaction immediately.
type chainAdapter struct {
	cs *ChangeSet
}

func (a *chainAdapter) LoadNode(id int64) (*gstypes.Node, error) {
	c, err := a.cs.Nodes.GetOrLoad(id, nil)
	if err != nil {
		return nil, err
	}
	return c.ForChangingLinkage(), nil
}

func (a *chainAdapter) LoadRelationship(id int64) (*gstypes.Relationship, error) {
	c, err := a.cs.Relationships.GetOrLoad(id, nil)
	if err != nil {
		return nil, err
	}
	return c.ForChangingLinkage(), nil
}

func (a *chainAdapter) NewRelationship(id int64) *gstypes.Relationship {
	c := a.cs.Relationships.Create(id, nil)
	return c.ForChangingLinkage()
}

func (a *chainAdapter) DeleteRelationship(id int64) {
	c, ok := a.cs.Relationships.GetIfLoaded(id)
	if !ok {
		return
	}
	c.ForChangingLinkage().InUse = false
	c.MarkDeleted()
}

func (a *chainAdapter) LoadGroup(id int64) (*gstypes.RelationshipGroup, error) {
	c, err := a.cs.RelationshipGroups.GetOrLoad(id, nil)
	if err != nil {
		return nil, err
	}
	return c.ForChangingLinkage(), nil
}

func (a *chainAdapter) NewGroup(id int64, owningNode int64, relType int32) *gstypes.RelationshipGroup {
	c := a.cs.RelationshipGroups.Create(id, nil)
	g := c.ForChangingLinkage()
	g.ID = id
	g.InUse = true
	g.Created = true
	g.OwningNode = owningNode
	g.Type = relType
	a.cs.groupIndex[[2]int64{owningNode, int64(relType)}] = id
	return g
}

func (a *chainAdapter) DeleteGroup(id int64) {
	c, ok := a.cs.RelationshipGroups.GetIfLoaded(id)
	if !ok {
		return
	}
	g := c.ForChangingLinkage()
	g.InUse = false
	c.MarkDeleted()
	for k, v := range a.cs.groupIndex {
		if v == id {
			delete(a.cs.groupIndex, k)
		}
	}
}

func (a *chainAdapter) AllocateGroupID() (int64, error) {
	return a.cs.store.NextRelationshipGroupID()
}

// FindGroup checks the cache of groups created or resolved earlier in
// this transaction first, then walks the node's group chain (the only
// index a dense node's groups are kept under) looking for one owned by
// ownerNode with the given type.
func (a *chainAdapter) FindGroup(ownerNode int64, relType int32) (int64, bool, error) {
	key := [2]int64{ownerNode, int64(relType)}
	if id, ok := a.cs.groupIndex[key]; ok {
		return id, true, nil
	}

	nodeChange, err := a.cs.Nodes.GetOrLoad(ownerNode, nil)
	if err != nil {
		return 0, false, err
	}
	id := nodeChange.ForReadingLinkage().NextRel
	for id != gstypes.NoID {
		gc, err := a.cs.RelationshipGroups.GetOrLoad(id, nil)
		if err != nil {
			return 0, false, err
		}
		g := gc.ForReadingLinkage()
		if g.OwningNode == ownerNode && g.Type == relType {
			a.cs.groupIndex[key] = g.ID
			return g.ID, true, nil
		}
		id = g.Next
	}
	return 0, false, nil
}

func (a *chainAdapter) DenseThreshold() int { return a.cs.denseThreshold }

func (a *chainAdapter) NotifyDenseUpgrade(nodeID int64) {
	a.cs.upgradedDense = append(a.cs.upgradedDense, nodeID)
}
