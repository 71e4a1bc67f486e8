package chain

import "github.com/cuemby/graphstore/pkg/gstypes"

// Context is everything the chain operators need from the surrounding
// transaction: staged-record access through the change buffer, and id
// allocation for newly created relationship groups. pkg/mutation
// implements this over its changebuf.RecordChanges buffers.
type Context interface {
	// LoadNode returns the node for mutation of its chain-linkage
	// fields (NextRel, Dense), promoting its change.
	LoadNode(id int64) (*gstypes.Node, error)

	// LoadRelationship returns a relationship already known to exist,
	// for mutation of its linkage fields.
	LoadRelationship(id int64) (*gstypes.Relationship, error)

	// NewRelationship stages a brand-new relationship record under id,
	// returning it zeroed for the caller to populate.
	NewRelationship(id int64) *gstypes.Relationship

	// DeleteRelationship marks the relationship's change as deleted.
	DeleteRelationship(id int64)

	// LoadGroup returns a relationship group for mutation.
	LoadGroup(id int64) (*gstypes.RelationshipGroup, error)

	// NewGroup stages a brand-new relationship group under a freshly
	// allocated id.
	NewGroup(id int64, owningNode int64, relType int32) *gstypes.RelationshipGroup

	// DeleteGroup marks the group's change as deleted.
	DeleteGroup(id int64)

	// AllocateGroupID reserves a new relationship-group id.
	AllocateGroupID() (int64, error)

	// FindGroup returns the id of the relationship group owned by node
	// for relType, if one is already staged or stored.
	FindGroup(ownerNode int64, relType int32) (id int64, ok bool, err error)

	// LockRelationship acquires a per-relationship mutex on id before a
	// splice mutates its linkage fields, so two transactions splicing
	// the same chain head never race on the same neighbor record.
	LockRelationship(id int64) error

	// DenseThreshold is the chain length at or beyond which a node is
	// upgraded to dense on its next edge creation.
	DenseThreshold() int

	// NotifyDenseUpgrade records that node was just upgraded to dense,
	// so commit knows to invalidate its cache entry.
	NotifyDenseUpgrade(nodeID int64)
}
