package chain

import "github.com/cuemby/graphstore/pkg/gstypes"

// side names which of a relationship's two node-chain participations a
// function is operating on. Loop relationships (firstNode == secondNode)
// only ever participate through sideFirst.
type side int

const (
	sideFirst side = iota
	sideSecond
)

// sideOf reports which side of rel touches ownerNode. For a loop
// relationship this always resolves to sideFirst.
func sideOf(rel *gstypes.Relationship, ownerNode int64) side {
	if rel.FirstNode == ownerNode {
		return sideFirst
	}
	return sideSecond
}

func ownerNodeForSide(rel *gstypes.Relationship, s side) int64 {
	if s == sideFirst {
		return rel.FirstNode
	}
	return rel.SecondNode
}

func prevRel(rel *gstypes.Relationship, s side) int64 {
	if s == sideFirst {
		return rel.FirstPrevRel
	}
	return rel.SecondPrevRel
}

func setPrevRel(rel *gstypes.Relationship, s side, v int64) {
	if s == sideFirst {
		rel.FirstPrevRel = v
	} else {
		rel.SecondPrevRel = v
	}
}

func nextRel(rel *gstypes.Relationship, s side) int64 {
	if s == sideFirst {
		return rel.FirstNextRel
	}
	return rel.SecondNextRel
}

func setNextRel(rel *gstypes.Relationship, s side, v int64) {
	if s == sideFirst {
		rel.FirstNextRel = v
	} else {
		rel.SecondNextRel = v
	}
}

func isChainHead(rel *gstypes.Relationship, s side) bool {
	if s == sideFirst {
		return rel.FirstInFirstChain
	}
	return rel.FirstInSecondChain
}

func setChainHead(rel *gstypes.Relationship, s side, v bool) {
	if s == sideFirst {
		rel.FirstInFirstChain = v
	} else {
		rel.FirstInSecondChain = v
	}
}

// headRef abstracts over where a chain's head pointer lives: a node's
// NextRel field when the node isn't dense, or a relationship group
// bucket's head field when it is.
type headRef struct {
	get func() int64
	set func(int64)
}

func nodeHeadRef(node *gstypes.Node) headRef {
	return headRef{
		get: func() int64 { return node.NextRel },
		set: func(v int64) { node.NextRel = v },
	}
}

func groupHeadRef(group *gstypes.RelationshipGroup, dir gstypes.Direction) headRef {
	return headRef{
		get: func() int64 { return group.HeadFor(dir) },
		set: func(v int64) { group.SetHeadFor(dir, v) },
	}
}

func directionFor(ownerNode int64, rel *gstypes.Relationship) gstypes.Direction {
	if rel.IsLoop() {
		return gstypes.DirLoop
	}
	if rel.FirstNode == ownerNode {
		return gstypes.DirOutgoing
	}
	return gstypes.DirIncoming
}
