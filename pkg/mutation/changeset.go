package mutation

import (
	"github.com/cuemby/graphstore/pkg/changebuf"
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/locks"
	"github.com/cuemby/graphstore/pkg/store"
)

// neoStoreKey is the fixed, single key the graph-singleton record is
// staged under; there is only ever one.
const neoStoreKey int64 = 0

// ChangeSet is the per-transaction mutation buffer: one
// changebuf.RecordChanges per record kind, plus the dynamic-record
// bookkeeping that falls outside the seven-kind command taxonomy.
// pkg/txn reads every staged change back out at prepare, and calls
// Clear after commit or rollback.
type ChangeSet struct {
	store          *store.Store
	denseThreshold int

	Nodes              *changebuf.RecordChanges[int64, *gstypes.Node]
	Relationships      *changebuf.RecordChanges[int64, *gstypes.Relationship]
	RelationshipGroups *changebuf.RecordChanges[int64, *gstypes.RelationshipGroup]
	Properties         *changebuf.RecordChanges[int64, *gstypes.PropertyRecord]
	LabelTokens        *changebuf.RecordChanges[int32, *gstypes.TokenRecord]
	RelTypeTokens      *changebuf.RecordChanges[int32, *gstypes.TokenRecord]
	PropKeyTokens      *changebuf.RecordChanges[int32, *gstypes.TokenRecord]
	SchemaRules        *changebuf.RecordChanges[int64, *gstypes.SchemaRuleRecord]
	NeoStore           *changebuf.RecordChanges[int64, *gstypes.NeoStoreRecord]

	chain *chainAdapter
	prop  *propAdapter

	// lockGroup holds every per-relationship mutex acquired by chain
	// surgery while this change set is mutated, released as a group
	// once the owning transaction commits or rolls back.
	lockGroup *locks.Group

	// groupIndex caches (owner node, relationship type) -> group id so
	// repeated FindGroup calls within one transaction don't re-walk the
	// node's group chain every time.
	groupIndex map[[2]int64]int64

	// dynamicWrites holds every dynamic record freshly allocated this
	// transaction (property values, label arrays, schema rule bytes,
	// token names), pending persistence at commit.
	dynamicWrites []*gstypes.DynamicRecord

	// dynamicFrees holds the head id of every dynamic record chain
	// superseded or removed this transaction, pending a free at commit
	// (or immediately, on rollback, alongside the rest of the created
	// record's id).
	dynamicFrees []int64

	// upgradedDense holds every node upgraded to dense this
	// transaction, so commit knows which cache entries need eviction.
	upgradedDense []int64
}

// NewChangeSet builds an empty buffer set backed by s, with a node
// upgraded to dense when a relationship is created on it while its
// chain already holds denseThreshold or more relationships. lockSvc backs the per-relationship mutexes chain
// surgery acquires while this change set is mutated; a nil lockSvc
// gets a throwaway in-memory service, for callers (tests, mostly) that
// don't care about cross-transaction contention.
func NewChangeSet(s *store.Store, denseThreshold int, lockSvc locks.Service) *ChangeSet {
	if lockSvc == nil {
		lockSvc = locks.NewInMemory()
	}
	cs := &ChangeSet{
		store:          s,
		denseThreshold: denseThreshold,
		groupIndex:     make(map[[2]int64]int64),
		lockGroup:      locks.NewGroup(lockSvc),

		Nodes:              changebuf.New[int64, *gstypes.Node](&nodeLoader{store: s}, true),
		Relationships:      changebuf.New[int64, *gstypes.Relationship](&relationshipLoader{store: s}, false),
		RelationshipGroups: changebuf.New[int64, *gstypes.RelationshipGroup](&groupLoader{store: s}, false),
		Properties:         changebuf.New[int64, *gstypes.PropertyRecord](&propertyLoader{store: s}, true),
		LabelTokens:        changebuf.New[int32, *gstypes.TokenRecord](&tokenLoader{store: s, kind: gstypes.TokenLabel}, true),
		RelTypeTokens:      changebuf.New[int32, *gstypes.TokenRecord](&tokenLoader{store: s, kind: gstypes.TokenRelationshipType}, true),
		PropKeyTokens:      changebuf.New[int32, *gstypes.TokenRecord](&tokenLoader{store: s, kind: gstypes.TokenPropertyKey}, true),
		SchemaRules:        changebuf.New[int64, *gstypes.SchemaRuleRecord](&schemaRuleLoader{store: s}, true),
		NeoStore:           changebuf.New[int64, *gstypes.NeoStoreRecord](&neoStoreLoader{store: s}, false),
	}
	cs.chain = &chainAdapter{cs: cs}
	cs.prop = &propAdapter{cs: cs}
	return cs
}

// Store returns the backing record store, for pkg/txn's commit and
// rollback paths.
func (cs *ChangeSet) Store() *store.Store { return cs.store }

// DynamicWrites returns every dynamic record allocated this
// transaction, pending persistence at commit.
func (cs *ChangeSet) DynamicWrites() []*gstypes.DynamicRecord { return cs.dynamicWrites }

// DynamicFrees returns the head id of every dynamic record chain
// superseded or removed this transaction.
func (cs *ChangeSet) DynamicFrees() []int64 { return cs.dynamicFrees }

// UpgradedDenseNodes returns every node id upgraded to dense this
// transaction.
func (cs *ChangeSet) UpgradedDenseNodes() []int64 { return cs.upgradedDense }

// ReleaseRelationshipLocks releases every per-relationship mutex chain
// surgery acquired while this change set was mutated. pkg/txn calls
// this once, at the end of both commit and rollback.
func (cs *ChangeSet) ReleaseRelationshipLocks() { cs.lockGroup.ReleaseAll() }

// Clear discards every staged change and dynamic-record bookkeeping.
// pkg/txn calls this after both commit and rollback.
func (cs *ChangeSet) Clear() {
	cs.Nodes.Clear()
	cs.Relationships.Clear()
	cs.RelationshipGroups.Clear()
	cs.Properties.Clear()
	cs.LabelTokens.Clear()
	cs.RelTypeTokens.Clear()
	cs.PropKeyTokens.Clear()
	cs.SchemaRules.Clear()
	cs.NeoStore.Clear()
	cs.dynamicWrites = nil
	cs.dynamicFrees = nil
	cs.upgradedDense = nil
	cs.groupIndex = make(map[[2]int64]int64)
}

// ResolveLabels implements labelindex.Resolver over this buffer's
// dynamic-record allocations and the store, for pkg/txn's label-update
// extraction at commit and for label edits within the transaction.
// Records allocated this transaction are read from the buffer, since
// they are not written to the store until commit.
func (cs *ChangeSet) ResolveLabels(f gstypes.LabelField) ([]int32, bool) {
	if f.Inline {
		return f.InlineLabels(), true
	}
	if f.DynamicRecordID == gstypes.NoID {
		return nil, false
	}
	pending := make(map[int64]*gstypes.DynamicRecord, len(cs.dynamicWrites))
	for _, rec := range cs.dynamicWrites {
		pending[rec.ID] = rec
	}
	if rec, ok := pending[f.DynamicRecordID]; ok {
		var raw []byte
		for ; rec != nil; rec = pending[rec.Next] {
			raw = append(raw, rec.Data...)
		}
		return decodeLabelIDs(raw), true
	}
	raw, err := cs.store.ReadChain(f.DynamicRecordID)
	if err != nil {
		return nil, false
	}
	return decodeLabelIDs(raw), true
}

func (cs *ChangeSet) tokenBuffer(kind gstypes.TokenKind) *changebuf.RecordChanges[int32, *gstypes.TokenRecord] {
	switch kind {
	case gstypes.TokenLabel:
		return cs.LabelTokens
	case gstypes.TokenRelationshipType:
		return cs.RelTypeTokens
	default:
		return cs.PropKeyTokens
	}
}
