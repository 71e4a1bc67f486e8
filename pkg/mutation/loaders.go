package mutation

import (
	"github.com/cuemby/graphstore/pkg/changebuf"
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/store"
)

// nodeLoader backs the node change buffer. Nodes track before-state:
// label-update extraction at commit needs the pre-mutation label field.
type nodeLoader struct{ store *store.Store }

func (l *nodeLoader) NewUnused(id int64, _ any) *gstypes.Node {
	return &gstypes.Node{ID: id, Created: true, NextRel: gstypes.NoID, NextProp: gstypes.NoID}
}

func (l *nodeLoader) Load(id int64, _ any) (*gstypes.Node, error) { return l.store.GetNode(id) }

func (l *nodeLoader) EnsureHeavy(*gstypes.Node) error { return nil }

func (l *nodeLoader) Clone(n *gstypes.Node) *gstypes.Node { return n.Clone() }

// relationshipLoader backs the relationship change buffer.
// Relationships don't track before-state (§4.1): commit only ever
// writes their current shape.
type relationshipLoader struct{ store *store.Store }

func (l *relationshipLoader) NewUnused(id int64, _ any) *gstypes.Relationship {
	return &gstypes.Relationship{ID: id, Created: true}
}

func (l *relationshipLoader) Load(id int64, _ any) (*gstypes.Relationship, error) {
	return l.store.GetRelationship(id)
}

func (l *relationshipLoader) EnsureHeavy(*gstypes.Relationship) error { return nil }

func (l *relationshipLoader) Clone(*gstypes.Relationship) *gstypes.Relationship {
	panic(changebuf.ErrCloneUnsupported)
}

// groupLoader backs the relationship-group change buffer. Groups don't
// track before-state either.
type groupLoader struct{ store *store.Store }

func (l *groupLoader) NewUnused(id int64, _ any) *gstypes.RelationshipGroup {
	return &gstypes.RelationshipGroup{ID: id, Created: true, Next: gstypes.NoID, Prev: gstypes.NoID,
		FirstOut: gstypes.NoID, FirstIn: gstypes.NoID, FirstLoop: gstypes.NoID}
}

func (l *groupLoader) Load(id int64, _ any) (*gstypes.RelationshipGroup, error) {
	return l.store.GetRelationshipGroup(id)
}

func (l *groupLoader) EnsureHeavy(*gstypes.RelationshipGroup) error { return nil }

func (l *groupLoader) Clone(*gstypes.RelationshipGroup) *gstypes.RelationshipGroup {
	panic(changebuf.ErrCloneUnsupported)
}

// propertyLoader backs the property change buffer. additionalData
// carries the owning primitive so a freshly created record remembers
// who it belongs to before the caller sets any other field.
type propertyLoader struct{ store *store.Store }

func (l *propertyLoader) NewUnused(id int64, additionalData any) *gstypes.PropertyRecord {
	owner, _ := additionalData.(gstypes.Primitive)
	return &gstypes.PropertyRecord{ID: id, Created: true, Owner: owner, PrevProp: gstypes.NoID, NextProp: gstypes.NoID}
}

func (l *propertyLoader) Load(id int64, _ any) (*gstypes.PropertyRecord, error) {
	return l.store.GetProperty(id)
}

func (l *propertyLoader) EnsureHeavy(p *gstypes.PropertyRecord) error { return l.store.EnsureHeavy(p) }

func (l *propertyLoader) Clone(p *gstypes.PropertyRecord) *gstypes.PropertyRecord { return p.Clone() }

// tokenLoader backs one of the three token-kind change buffers; kind
// is fixed per instance since a token id's namespace never changes.
type tokenLoader struct {
	store *store.Store
	kind  gstypes.TokenKind
}

func (l *tokenLoader) NewUnused(id int32, _ any) *gstypes.TokenRecord {
	return &gstypes.TokenRecord{ID: id, Created: true, Kind: l.kind, NameRecordID: gstypes.NoID}
}

func (l *tokenLoader) Load(id int32, _ any) (*gstypes.TokenRecord, error) {
	return l.store.GetToken(l.kind, id)
}

func (l *tokenLoader) EnsureHeavy(*gstypes.TokenRecord) error { return nil }

func (l *tokenLoader) Clone(t *gstypes.TokenRecord) *gstypes.TokenRecord { return t.Clone() }

// schemaRuleLoader backs the schema-rule change buffer.
type schemaRuleLoader struct{ store *store.Store }

func (l *schemaRuleLoader) NewUnused(id int64, _ any) *gstypes.SchemaRuleRecord {
	return &gstypes.SchemaRuleRecord{ID: id}
}

func (l *schemaRuleLoader) Load(id int64, _ any) (*gstypes.SchemaRuleRecord, error) {
	return l.store.GetSchemaRule(id)
}

func (l *schemaRuleLoader) EnsureHeavy(*gstypes.SchemaRuleRecord) error { return nil }

func (l *schemaRuleLoader) Clone(r *gstypes.SchemaRuleRecord) *gstypes.SchemaRuleRecord {
	return r.Clone()
}

// neoStoreLoader backs the single-key graph-singleton change buffer.
// It doesn't track before-state; the graph property chain head is a
// single scalar and commit only needs the current value.
type neoStoreLoader struct{ store *store.Store }

func (l *neoStoreLoader) NewUnused(int64, any) *gstypes.NeoStoreRecord {
	return &gstypes.NeoStoreRecord{NextProp: gstypes.NoID}
}

func (l *neoStoreLoader) Load(int64, any) (*gstypes.NeoStoreRecord, error) {
	return l.store.GetNeoStoreRecord()
}

func (l *neoStoreLoader) EnsureHeavy(*gstypes.NeoStoreRecord) error { return nil }

func (l *neoStoreLoader) Clone(*gstypes.NeoStoreRecord) *gstypes.NeoStoreRecord {
	panic(changebuf.ErrCloneUnsupported)
}
