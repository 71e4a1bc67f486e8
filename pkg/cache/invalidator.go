package cache

import "github.com/cuemby/graphstore/pkg/gstypes"

// Invalidator is the cache back-door commit calls through on every
// mutation kind that needs eviction or refresh.
type Invalidator interface {
	RemoveNodeFromCache(id int64)
	RemoveRelationshipFromCache(id int64)
	PatchDeletedRelationshipNodes(relID, firstNode, firstNextRel, secondNode, secondNextRel int64)
	RemoveRelationshipTypeFromCache(id int32)
	AddRelationshipTypeToken(t *gstypes.TokenRecord)
	AddLabelToken(t *gstypes.TokenRecord)
	AddPropertyKeyToken(t *gstypes.TokenRecord)
	ApplyLabelUpdates(updates []NodeLabelUpdate)
	RemoveSchemaRuleFromCache(id int64)
	AddSchemaRule(r *gstypes.SchemaRuleRecord)
	RemoveGraphPropertiesFromCache()
}

// NodeLabelUpdate is the payload applyLabelUpdates receives; it mirrors
// labelindex.NodeLabelUpdate without importing that package, since
// pkg/cache must not depend on pkg/labelindex.
type NodeLabelUpdate struct {
	NodeID  int64
	Added   []int32
	Removed []int32
}

// NoOp discards every invalidation. Useful when a caller only wants the
// store mutation and doesn't keep a cache at all.
type NoOp struct{}

func (NoOp) RemoveNodeFromCache(int64)                                     {}
func (NoOp) RemoveRelationshipFromCache(int64)                             {}
func (NoOp) PatchDeletedRelationshipNodes(int64, int64, int64, int64, int64) {}
func (NoOp) RemoveRelationshipTypeFromCache(int32)                         {}
func (NoOp) AddRelationshipTypeToken(*gstypes.TokenRecord)                 {}
func (NoOp) AddLabelToken(*gstypes.TokenRecord)                            {}
func (NoOp) AddPropertyKeyToken(*gstypes.TokenRecord)                      {}
func (NoOp) ApplyLabelUpdates([]NodeLabelUpdate)                           {}
func (NoOp) RemoveSchemaRuleFromCache(int64)                               {}
func (NoOp) AddSchemaRule(*gstypes.SchemaRuleRecord)                       {}
func (NoOp) RemoveGraphPropertiesFromCache()                               {}
