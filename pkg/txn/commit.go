package txn

import (
	"sort"

	"github.com/cuemby/graphstore/pkg/cache"
	"github.com/cuemby/graphstore/pkg/changebuf"
	"github.com/cuemby/graphstore/pkg/command"
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/labelindex"
	"github.com/cuemby/graphstore/pkg/locks"
	"github.com/cuemby/graphstore/pkg/log"
	"github.com/cuemby/graphstore/pkg/metrics"
	"github.com/cuemby/graphstore/pkg/propindex"
	"github.com/cuemby/graphstore/pkg/store"
)

// tokenKindOrder fixes the order token commands commit in: relationship
// type tokens, then label tokens, then property key tokens.
func tokenKindOrder(k gstypes.TokenKind) int {
	switch k {
	case gstypes.TokenRelationshipType:
		return 0
	case gstypes.TokenLabel:
		return 1
	default:
		return 2
	}
}

// execute runs one ordered command stream against the store in the
// fixed phase order commit and recovery replay share: tokens; then, for
// each of created/modified/deleted in turn, property commands,
// relationship commands, sorted node commands, and relationship-group
// commands; then schema rules; then the graph-singleton record; then
// the last-committed-tx watermark. recovery suppresses id-generator
// advancement that a live commit would otherwise already reflect, and
// additionally bumps every record kind's sequence to the store's
// current high-id once done.
func execute(deps Dependencies, cmds []command.Command, txID int64, dynamicWrites []*gstypes.DynamicRecord, dynamicFrees []int64, resolver labelindex.Resolver, recovery bool) error {
	s := deps.Store

	// Dynamic records backing label arrays, spilled string/array
	// property values, and token names live outside the seven-type
	// command taxonomy (only schema rules carry their dynamic chain
	// inline, via SchemaRuleCommand.After) — persist and free them
	// first so every pointer a command's after-state carries into one
	// resolves once the rest of this phase runs.
	for _, rec := range dynamicWrites {
		if err := s.PutDynamic(rec); err != nil {
			return &UnderlyingStorageError{Op: "commit dynamic record", Err: err}
		}
	}
	for _, head := range dynamicFrees {
		if err := s.FreeChain(head); err != nil {
			return &UnderlyingStorageError{Op: "free dynamic record chain", Err: err}
		}
	}

	b := command.NewBatch(cmds)
	tokenCmds := b.Tokens
	nodeCmds := b.Nodes
	relCmds := b.Relationships
	groupCmds := b.RelationshipGroups
	propCmds := b.Properties
	schemaCmds := b.SchemaRules

	sort.SliceStable(tokenCmds, func(i, j int) bool {
		return tokenKindOrder(tokenCmds[i].Kind) < tokenKindOrder(tokenCmds[j].Kind)
	})
	for _, tc := range tokenCmds {
		if err := commitToken(deps, tc); err != nil {
			return err
		}
	}

	lockGroup := locks.NewGroup(deps.Locks)
	defer lockGroup.ReleaseAll()
	log.WithTxID(txID).Debug().Str("lock_group", lockGroup.ID()).Msg("acquiring commit locks")

	var labelChanges []labelindex.NodeLabelChange
	nodeCmdsByID := make(map[int64]propindex.NodeCommand, len(nodeCmds))

	for _, mode := range []changebuf.Mode{changebuf.ModeCreate, changebuf.ModeUpdate, changebuf.ModeDelete} {
		for _, pc := range filterProperty(propCmds, mode) {
			if pc.After.Owner.Kind == gstypes.PrimitiveNode {
				if err := lockGroup.Node(pc.After.Owner.ID, locks.Write); err != nil {
					return err
				}
			}
			if err := s.PutProperty(pc.After); err != nil {
				return &UnderlyingStorageError{Op: "commit property", Err: err}
			}
			if pc.After.Owner.Kind == gstypes.PrimitiveGraph {
				deps.Cache.RemoveGraphPropertiesFromCache()
			}
		}

		for _, rc := range filterRelationship(relCmds, mode) {
			if err := s.PutRelationship(rc.After); err != nil {
				return &UnderlyingStorageError{Op: "commit relationship", Err: err}
			}
			deps.Cache.RemoveRelationshipFromCache(rc.After.ID)
			if mode == changebuf.ModeDelete {
				deps.Cache.PatchDeletedRelationshipNodes(
					rc.After.ID, rc.After.FirstNode, rc.After.FirstNextRel,
					rc.After.SecondNode, rc.After.SecondNextRel,
				)
			}
		}

		for _, nc := range sortedNodeCommands(filterNode(nodeCmds, mode)) {
			if err := lockGroup.Node(nc.After.ID, locks.Write); err != nil {
				return err
			}
			if err := s.PutNode(nc.After); err != nil {
				return &UnderlyingStorageError{Op: "commit node", Err: err}
			}
			nodeCmdsByID[nc.After.ID] = propindex.NodeCommand{Before: nc.Before, After: nc.After, Mode: nc.Mode}
			deps.Cache.RemoveNodeFromCache(nc.After.ID)
			labelChanges = append(labelChanges, labelindex.NodeLabelChange{
				NodeID: nc.After.ID, Before: beforeLabelField(nc), After: nc.After.Labels,
			})
		}

		for _, gc := range filterGroup(groupCmds, mode) {
			if err := s.PutRelationshipGroup(gc.After); err != nil {
				return &UnderlyingStorageError{Op: "commit relationship group", Err: err}
			}
		}
	}

	if len(labelChanges) > 0 {
		if err := commitLabelUpdates(deps, labelChanges, resolver); err != nil {
			return err
		}
	}

	propertyCmds := make([]propindex.PropertyCommand, 0, len(propCmds))
	for _, pc := range propCmds {
		propertyCmds = append(propertyCmds, propindex.PropertyCommand{Before: pc.Before, After: pc.After, Mode: pc.Mode})
	}
	batch := propindex.NewLazyBatch(propertyCmds, nodeCmdsByID)
	if !batch.Empty() {
		if err := deps.PropertyIndex.UpdateIndexes(batch); err != nil {
			return &UnderlyingStorageError{Op: "commit property index batch", Err: err}
		}
		metrics.PropertyIndexBatchesSubmitted.Inc()
	}

	// Schema rules commit last among record kinds: the property-index
	// batch above has already been submitted, so a schema rule created
	// by this same transaction doesn't double-count this transaction's
	// own property writes when the new index starts its population
	// scan.
	for _, sc := range schemaCmds {
		sc.TxID = txID
		if err := commitSchemaRule(deps, sc); err != nil {
			return err
		}
	}

	if b.NeoStore != nil {
		if err := s.PutNeoStoreRecord(b.NeoStore.After); err != nil {
			return &UnderlyingStorageError{Op: "commit neostore record", Err: err}
		}
		if recovery {
			deps.Cache.RemoveGraphPropertiesFromCache()
		}
	}

	if err := s.AdvanceLastCommittedTx(txID); err != nil {
		return &UnderlyingStorageError{Op: "advance last committed tx", Err: err}
	}

	if recovery {
		for _, kind := range []store.RecordKind{
			store.KindNode, store.KindRelationship, store.KindRelationshipGroup,
			store.KindProperty, store.KindDynamic,
		} {
			high, err := s.HighID(kind)
			if err != nil {
				return err
			}
			if err := s.BumpSequence(kind, high); err != nil {
				return err
			}
		}
	}

	return nil
}

func commitToken(deps Dependencies, tc command.TokenCommand) error {
	if err := deps.Store.PutToken(tc.After); err != nil {
		return &UnderlyingStorageError{Op: "commit token", Err: err}
	}
	switch tc.Kind {
	case gstypes.TokenRelationshipType:
		deps.Cache.AddRelationshipTypeToken(tc.After)
	case gstypes.TokenLabel:
		deps.Cache.AddLabelToken(tc.After)
	case gstypes.TokenPropertyKey:
		deps.Cache.AddPropertyKeyToken(tc.After)
	}
	return nil
}

func commitSchemaRule(deps Dependencies, sc command.SchemaRuleCommand) error {
	s := deps.Store
	for _, rec := range sc.After {
		if err := s.PutDynamic(rec); err != nil {
			return &UnderlyingStorageError{Op: "commit schema rule dynamic record", Err: err}
		}
	}
	if sc.Mode == changebuf.ModeDelete {
		if err := s.DeleteSchemaRule(sc.Rule.ID); err != nil {
			return &UnderlyingStorageError{Op: "commit schema rule delete", Err: err}
		}
		deps.Cache.RemoveSchemaRuleFromCache(sc.Rule.ID)
		log.WithTxID(sc.TxID).Info().Str("correlation_id", sc.CorrelationID).Int64("schema_rule_id", sc.Rule.ID).Msg("schema rule dropped")
		return nil
	}
	if err := s.PutSchemaRule(sc.Rule); err != nil {
		return &UnderlyingStorageError{Op: "commit schema rule", Err: err}
	}
	deps.Cache.AddSchemaRule(sc.Rule)
	log.WithTxID(sc.TxID).Info().Str("correlation_id", sc.CorrelationID).Int64("schema_rule_id", sc.Rule.ID).Msg("schema rule created")
	return nil
}

func commitLabelUpdates(deps Dependencies, changes []labelindex.NodeLabelChange, resolver labelindex.Resolver) error {
	updates := labelindex.Extract(changes, resolver)
	if len(updates) == 0 {
		return nil
	}
	metrics.LabelUpdatesEmitted.Add(float64(len(updates)))

	if deps.LabelIndex != nil {
		w := deps.LabelIndex.NewWriter()
		for _, u := range updates {
			if err := w.Write(u); err != nil {
				_ = w.Close()
				return &UnderlyingStorageError{Op: "write label index update", Err: err}
			}
		}
		if err := w.Commit(); err != nil {
			return &UnderlyingStorageError{Op: "commit label index batch", Err: err}
		}
	}

	deps.Cache.ApplyLabelUpdates(toCacheUpdates(updates))
	return nil
}

func toCacheUpdates(updates []labelindex.NodeLabelUpdate) []cache.NodeLabelUpdate {
	out := make([]cache.NodeLabelUpdate, 0, len(updates))
	for _, u := range updates {
		out = append(out, cache.NodeLabelUpdate{NodeID: u.NodeID, Added: u.Added(), Removed: u.Removed()})
	}
	return out
}

func beforeLabelField(nc command.NodeCommand) *gstypes.LabelField {
	if nc.Before == nil {
		return nil
	}
	f := nc.Before.Labels
	return &f
}

func filterProperty(cmds []command.PropertyCommand, mode changebuf.Mode) []command.PropertyCommand {
	var out []command.PropertyCommand
	for _, c := range cmds {
		if c.Mode == mode {
			out = append(out, c)
		}
	}
	return out
}

func filterRelationship(cmds []command.RelationshipCommand, mode changebuf.Mode) []command.RelationshipCommand {
	var out []command.RelationshipCommand
	for _, c := range cmds {
		if c.Mode == mode {
			out = append(out, c)
		}
	}
	return out
}

func filterNode(cmds []command.NodeCommand, mode changebuf.Mode) []command.NodeCommand {
	var out []command.NodeCommand
	for _, c := range cmds {
		if c.Mode == mode {
			out = append(out, c)
		}
	}
	return out
}

func filterGroup(cmds []command.RelationshipGroupCommand, mode changebuf.Mode) []command.RelationshipGroupCommand {
	var out []command.RelationshipGroupCommand
	for _, c := range cmds {
		if c.Mode == mode {
			out = append(out, c)
		}
	}
	return out
}
