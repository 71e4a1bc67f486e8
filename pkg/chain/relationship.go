package chain

import (
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/metrics"
)

// chainLength reads the node's current relationship-chain degree in
// O(1): by invariant 2, the head record's prev field (on the side
// touching this node) holds the chain length rather than a predecessor
// pointer. Only meaningful for non-dense nodes.
func chainLength(ctx Context, node *gstypes.Node) (int, error) {
	if node.NextRel == gstypes.NoID {
		return 0, nil
	}
	head, err := ctx.LoadRelationship(node.NextRel)
	if err != nil {
		return 0, err
	}
	s := sideOf(head, node.ID)
	return int(prevRel(head, s)), nil
}

// CreateRelationship allocates and splices in a new relationship
// between firstNode and secondNode.
func CreateRelationship(ctx Context, relID int64, relType int32, firstNode, secondNode int64) (*gstypes.Relationship, error) {
	a, err := ctx.LoadNode(firstNode)
	if err != nil {
		return nil, err
	}
	if !a.InUse {
		return nil, &EntityDeletedError{Kind: "node", ID: firstNode}
	}

	isLoop := firstNode == secondNode
	b := a
	if !isLoop {
		b, err = ctx.LoadNode(secondNode)
		if err != nil {
			return nil, err
		}
		if !b.InUse {
			return nil, &EntityDeletedError{Kind: "node", ID: secondNode}
		}
	}

	if err := maybeUpgrade(ctx, a); err != nil {
		return nil, err
	}
	if !isLoop {
		if err := maybeUpgrade(ctx, b); err != nil {
			return nil, err
		}
	}

	rel := ctx.NewRelationship(relID)
	rel.ID = relID
	rel.InUse = true
	rel.Created = true
	rel.FirstNode = firstNode
	rel.SecondNode = secondNode
	rel.Type = relType
	rel.NextProp = gstypes.NoID
	rel.FirstPrevRel = gstypes.NoID
	rel.FirstNextRel = gstypes.NoID
	rel.SecondPrevRel = gstypes.NoID
	rel.SecondNextRel = gstypes.NoID

	if err := spliceEndpoint(ctx, a, rel, sideFirst); err != nil {
		return nil, err
	}

	if isLoop {
		rel.SecondPrevRel = rel.FirstPrevRel
		rel.SecondNextRel = rel.FirstNextRel
		rel.FirstInSecondChain = false
	} else if err := spliceEndpoint(ctx, b, rel, sideSecond); err != nil {
		return nil, err
	}

	metrics.RelationshipChainSplices.WithLabelValues("create").Inc()
	return rel, nil
}

func maybeUpgrade(ctx Context, node *gstypes.Node) error {
	if node.Dense {
		return nil
	}
	length, err := chainLength(ctx, node)
	if err != nil {
		return err
	}
	if length < ctx.DenseThreshold() {
		return nil
	}
	return UpgradeToDense(ctx, node)
}

func spliceEndpoint(ctx Context, node *gstypes.Node, rel *gstypes.Relationship, s side) error {
	if !node.Dense {
		return spliceAtHead(ctx, nodeHeadRef(node), rel, s)
	}
	group, err := groupFor(ctx, node, rel.Type)
	if err != nil {
		return err
	}
	dir := directionFor(node.ID, rel)
	return spliceAtHead(ctx, groupHeadRef(group, dir), rel, s)
}

func spliceAtHead(ctx Context, ref headRef, rel *gstypes.Relationship, s side) error {
	oldHeadID := ref.get()
	if oldHeadID == gstypes.NoID {
		setPrevRel(rel, s, 1)
		setNextRel(rel, s, gstypes.NoID)
		setChainHead(rel, s, true)
		ref.set(rel.ID)
		return nil
	}

	if err := ctx.LockRelationship(oldHeadID); err != nil {
		return err
	}
	oldHead, err := ctx.LoadRelationship(oldHeadID)
	if err != nil {
		return err
	}
	ownerNode := ownerNodeForSide(rel, s)
	oldSide := sideOf(oldHead, ownerNode)
	count := prevRel(oldHead, oldSide)

	setPrevRel(rel, s, count+1)
	setNextRel(rel, s, oldHeadID)
	setChainHead(rel, s, true)

	setPrevRel(oldHead, oldSide, rel.ID)
	setChainHead(oldHead, oldSide, false)

	ref.set(rel.ID)
	return nil
}

// DeleteRelationship unsplices a relationship from every chain side it
// participates in.
func DeleteRelationship(ctx Context, relID int64) error {
	rel, err := ctx.LoadRelationship(relID)
	if err != nil {
		return err
	}
	if !rel.InUse {
		return &EntityDeletedError{Kind: "relationship", ID: relID}
	}

	sides := []side{sideFirst}
	if !rel.IsLoop() {
		sides = append(sides, sideSecond)
	}

	for _, s := range sides {
		ownerNode := ownerNodeForSide(rel, s)
		node, err := ctx.LoadNode(ownerNode)
		if err != nil {
			return err
		}

		if !node.Dense {
			if err := unspliceSide(ctx, nodeHeadRef(node), rel, s); err != nil {
				return err
			}
			continue
		}

		groupID, ok, err := ctx.FindGroup(ownerNode, rel.Type)
		if err != nil {
			return err
		}
		if !ok {
			return &CorruptChainError{Detail: "dense node has no group for relationship's type"}
		}
		group, err := ctx.LoadGroup(groupID)
		if err != nil {
			return err
		}
		dir := directionFor(ownerNode, rel)
		if err := unspliceSide(ctx, groupHeadRef(group, dir), rel, s); err != nil {
			return err
		}
		if err := unlinkGroupIfEmpty(ctx, node, group); err != nil {
			return err
		}
	}

	ctx.DeleteRelationship(relID)
	metrics.RelationshipChainSplices.WithLabelValues("delete").Inc()
	return nil
}

func unspliceSide(ctx Context, ref headRef, rel *gstypes.Relationship, s side) error {
	ownerNode := ownerNodeForSide(rel, s)
	nextID := nextRel(rel, s)

	if isChainHead(rel, s) {
		oldCount := prevRel(rel, s)
		if nextID != gstypes.NoID {
			if err := ctx.LockRelationship(nextID); err != nil {
				return err
			}
			next, err := ctx.LoadRelationship(nextID)
			if err != nil {
				return err
			}
			nextSide := sideOf(next, ownerNode)
			setPrevRel(next, nextSide, oldCount-1)
			setChainHead(next, nextSide, true)
		}
		ref.set(nextID)
		return nil
	}

	prevID := prevRel(rel, s)

	headID := ref.get()
	if err := ctx.LockRelationship(headID); err != nil {
		return err
	}
	head, err := ctx.LoadRelationship(headID)
	if err != nil {
		return err
	}
	headSide := sideOf(head, ownerNode)
	setPrevRel(head, headSide, prevRel(head, headSide)-1)

	if err := ctx.LockRelationship(prevID); err != nil {
		return err
	}
	prev, err := ctx.LoadRelationship(prevID)
	if err != nil {
		return err
	}
	prevSide := sideOf(prev, ownerNode)
	setNextRel(prev, prevSide, nextID)

	if nextID != gstypes.NoID {
		if err := ctx.LockRelationship(nextID); err != nil {
			return err
		}
		next, err := ctx.LoadRelationship(nextID)
		if err != nil {
			return err
		}
		nextSide := sideOf(next, ownerNode)
		setPrevRel(next, nextSide, prevID)
	}
	return nil
}

// UpgradeToDense converts node to a dense node, moving every
// relationship on its plain chain into the appropriate relationship
// group bucket.
func UpgradeToDense(ctx Context, node *gstypes.Node) error {
	relID := node.NextRel
	node.Dense = true
	node.NextRel = gstypes.NoID
	ctx.NotifyDenseUpgrade(node.ID)
	metrics.DenseNodeUpgrades.Inc()

	for relID != gstypes.NoID {
		rel, err := ctx.LoadRelationship(relID)
		if err != nil {
			return err
		}
		s := sideOf(rel, node.ID)
		next := nextRel(rel, s)

		setPrevRel(rel, s, gstypes.NoID)
		setNextRel(rel, s, gstypes.NoID)
		setChainHead(rel, s, false)

		group, err := groupFor(ctx, node, rel.Type)
		if err != nil {
			return err
		}
		dir := directionFor(node.ID, rel)
		if err := spliceAtHead(ctx, groupHeadRef(group, dir), rel, s); err != nil {
			return err
		}

		relID = next
	}
	return nil
}
