package chain

import (
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/metrics"
)

// groupFor returns the relationship group owned by ownerNode for
// relType, creating and chaining one in if none exists yet.
//
// Group chain ordering is unspecified by the source this is modeled on
// (insertion order there); this implementation keeps newly created
// groups at the head of the node's group chain, which is the simplest
// splice and gives a deterministic, reproducible order across runs
// since FindGroup always resolves the same (node, type) pair to the
// same group once created.
func groupFor(ctx Context, node *gstypes.Node, relType int32) (*gstypes.RelationshipGroup, error) {
	if id, ok, err := ctx.FindGroup(node.ID, relType); err != nil {
		return nil, err
	} else if ok {
		return ctx.LoadGroup(id)
	}

	id, err := ctx.AllocateGroupID()
	if err != nil {
		return nil, err
	}
	group := ctx.NewGroup(id, node.ID, relType)
	group.FirstOut = gstypes.NoID
	group.FirstIn = gstypes.NoID
	group.FirstLoop = gstypes.NoID
	group.Prev = gstypes.NoID
	group.Next = node.NextRel
	if node.NextRel != gstypes.NoID {
		oldHead, err := ctx.LoadGroup(node.NextRel)
		if err != nil {
			return nil, err
		}
		oldHead.Prev = id
	}
	node.NextRel = id
	metrics.GroupChainSplices.WithLabelValues("create").Inc()
	return group, nil
}

// unlinkGroupIfEmpty removes group from the node's group chain once all
// three of its relationship buckets are empty.
func unlinkGroupIfEmpty(ctx Context, node *gstypes.Node, group *gstypes.RelationshipGroup) error {
	if !group.Empty() {
		return nil
	}
	if group.Prev != gstypes.NoID {
		prev, err := ctx.LoadGroup(group.Prev)
		if err != nil {
			return err
		}
		prev.Next = group.Next
	} else {
		node.NextRel = group.Next
	}
	if group.Next != gstypes.NoID {
		next, err := ctx.LoadGroup(group.Next)
		if err != nil {
			return err
		}
		next.Prev = group.Prev
	}
	ctx.DeleteGroup(group.ID)
	metrics.GroupChainSplices.WithLabelValues("remove-empty-group").Inc()
	return nil
}
