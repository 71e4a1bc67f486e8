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
	"github.com/cuemby/graphstore/pkg/mutation"
	"github.com/cuemby/graphstore/pkg/propindex"
	"github.com/cuemby/graphstore/pkg/store"
	"github.com/cuemby/graphstore/pkg/validate"
	"github.com/google/uuid"
)

// Config tunes chain behavior shared between mutation and commit.
type Config struct {
	DenseNodeThreshold int
}

// Dependencies wires a Transaction to its external collaborators. Any
// field left nil falls back to a no-op implementation where one exists
// (Cache, PropertyIndex, Constraints); Store, Sink, and Locks are
// required.
type Dependencies struct {
	Store         *store.Store
	Sink          command.Sink
	Locks         locks.Service
	Cache         cache.Invalidator
	PropertyIndex propindex.Updater
	LabelIndex    LabelIndexOpener
	Constraints   validate.ConstraintChecker
}

// LabelIndexOpener opens a scoped label-scan writer for one commit.
// *labelindex.Index satisfies this directly.
type LabelIndexOpener interface {
	NewWriter() labelindex.Writer
}

func (d *Dependencies) fillDefaults() {
	if d.Cache == nil {
		d.Cache = cache.NoOp{}
	}
	if d.PropertyIndex == nil {
		d.PropertyIndex = propindex.NoOp{}
	}
	if d.Constraints == nil {
		d.Constraints = validate.NoConstraints{}
	}
}

// Transaction is one prepare/commit/rollback cycle over a ChangeSet.
type Transaction struct {
	id        int64
	startTxID int64
	deps      Dependencies
	Changes   *mutation.ChangeSet

	prepared   bool
	committed  bool
	rolledBack bool
	commands   []command.Command
}

// New starts a transaction with a freshly allocated ChangeSet, recording
// the store's current last-committed tx id as this transaction's start
// knowledge for later constraint validation.
func New(id int64, cfg Config, deps Dependencies) (*Transaction, error) {
	deps.fillDefaults()
	startTxID, err := deps.Store.LastCommittedTx()
	if err != nil {
		return nil, err
	}
	return &Transaction{
		id:        id,
		startTxID: startTxID,
		deps:      deps,
		Changes:   mutation.NewChangeSet(deps.Store, cfg.DenseNodeThreshold, deps.Locks),
	}, nil
}

// Prepare materializes the staged ChangeSet into an ordered command
// stream, validating each record's integrity as it goes, appends every
// command to the sink, then checks that no schema constraint created
// after this transaction began was violated. The buffer itself is left
// intact for Commit to execute.
func (tx *Transaction) Prepare() ([]command.Command, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.PrepareDuration)

	if tx.prepared {
		return nil, &XAError{Op: "prepare", Detail: "transaction already prepared"}
	}
	if tx.committed {
		return nil, &XAError{Op: "prepare", Detail: "transaction already committed"}
	}
	if tx.rolledBack {
		return nil, &XAError{Op: "prepare", Detail: "transaction already rolled back"}
	}

	var cmds []command.Command

	for _, c := range tx.Changes.RelTypeTokens.Changes() {
		cmds = append(cmds, command.TokenCommand{Kind: gstypes.TokenRelationshipType, After: c.ForReadingData(), Mode: c.GetMode()})
	}
	for _, c := range tx.Changes.LabelTokens.Changes() {
		cmds = append(cmds, command.TokenCommand{Kind: gstypes.TokenLabel, After: c.ForReadingData(), Mode: c.GetMode()})
	}

	for _, c := range tx.Changes.Nodes.Changes() {
		after := c.ForReadingLinkage()
		if err := validate.ValidateNodeRecord(after); err != nil {
			return nil, err
		}
		before, _ := c.GetBefore()
		cmds = append(cmds, command.NodeCommand{Before: before, After: after, Mode: c.GetMode()})
	}

	for _, c := range tx.Changes.Relationships.Changes() {
		cmds = append(cmds, command.RelationshipCommand{After: c.ForReadingLinkage(), Mode: c.GetMode()})
	}

	for _, c := range tx.Changes.NeoStore.Changes() {
		cmds = append(cmds, command.NeoStoreCommand{After: c.ForReadingLinkage(), Mode: c.GetMode()})
	}

	for _, c := range tx.Changes.PropKeyTokens.Changes() {
		cmds = append(cmds, command.TokenCommand{Kind: gstypes.TokenPropertyKey, After: c.ForReadingData(), Mode: c.GetMode()})
	}

	for _, c := range tx.Changes.Properties.Changes() {
		before, _ := c.GetBefore()
		cmds = append(cmds, command.PropertyCommand{Before: before, After: c.ForReadingData(), Mode: c.GetMode()})
	}

	for _, c := range tx.Changes.SchemaRules.Changes() {
		rule := c.ForReadingData()
		if err := validate.ValidateSchemaRule(rule); err != nil {
			return nil, err
		}
		var beforeRecords []*gstypes.DynamicRecord
		if before, ok := c.GetBefore(); ok && before != nil {
			beforeRecords = before.DynamicRecords
		}
		cmds = append(cmds, command.SchemaRuleCommand{
			Before: beforeRecords, After: rule.DynamicRecords, Rule: rule,
			Mode: c.GetMode(), CorrelationID: uuid.NewString(),
		})
	}

	for _, c := range tx.Changes.RelationshipGroups.Changes() {
		cmds = append(cmds, command.RelationshipGroupCommand{After: c.ForReadingLinkage(), Mode: c.GetMode()})
	}

	for _, cmd := range cmds {
		if err := tx.deps.Sink.AddCommand(cmd); err != nil {
			return nil, &UnderlyingStorageError{Op: "prepare: append command to log", Err: err}
		}
	}

	if err := validate.ValidateTransactionStartKnowledge(tx.startTxID, tx.deps.Constraints); err != nil {
		return nil, err
	}

	tx.prepared = true
	tx.commands = cmds

	metrics.TransactionsPrepared.Inc()
	metrics.CommandsPerTransaction.Observe(float64(len(cmds)))
	log.WithTxID(tx.id).Debug().Int("command_count", len(cmds)).Msg("transaction prepared")
	return cmds, nil
}

// Commit executes this transaction's own just-prepared commands. Use
// Recover to execute a batch replayed from a durable log instead.
func (tx *Transaction) Commit() error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CommitDuration)

	if !tx.prepared {
		return &XAError{Op: "commit", Detail: "transaction not prepared"}
	}
	if tx.committed {
		return &XAError{Op: "commit", Detail: "transaction already committed"}
	}

	last, err := tx.deps.Store.LastCommittedTx()
	if err != nil {
		return err
	}
	if tx.id != last+1 {
		return &XAError{Op: "commit", Detail: "commit tx id is not last committed + 1"}
	}

	dynWrites := tx.Changes.DynamicWrites()
	dynFrees := tx.Changes.DynamicFrees()
	if err := execute(tx.deps, tx.commands, tx.id, dynWrites, dynFrees, tx.Changes, false); err != nil {
		return err
	}

	tx.committed = true
	tx.Changes.ReleaseRelationshipLocks()
	tx.Changes.Clear()
	metrics.TransactionsCommitted.Inc()
	log.WithTxID(tx.id).Info().Int("command_count", len(tx.commands)).Msg("transaction committed")
	return nil
}

// Rollback discards the staged change buffer and returns every created
// record's id (and the ids of any dynamic records it allocated) to the
// store's id allocator, then invalidates the cache for every touched
// key so no caller observes the aborted state.
func (tx *Transaction) Rollback() error {
	if tx.committed {
		return &XAError{Op: "rollback", Detail: "transaction already committed"}
	}
	if tx.rolledBack {
		return &XAError{Op: "rollback", Detail: "transaction already rolled back"}
	}

	s := tx.deps.Store
	inval := tx.deps.Cache

	for _, c := range tx.Changes.Nodes.Changes() {
		if c.IsCreated() {
			if err := s.FreeNodeID(c.GetKey()); err != nil {
				return err
			}
		}
		inval.RemoveNodeFromCache(c.GetKey())
	}
	for _, c := range tx.Changes.Relationships.Changes() {
		if c.IsCreated() {
			if err := s.FreeRelationshipID(c.GetKey()); err != nil {
				return err
			}
		}
		inval.RemoveRelationshipFromCache(c.GetKey())
	}
	for _, c := range tx.Changes.RelationshipGroups.Changes() {
		if c.IsCreated() {
			if err := s.FreeRelationshipGroupID(c.GetKey()); err != nil {
				return err
			}
		}
	}
	for _, c := range tx.Changes.Properties.Changes() {
		if c.IsCreated() {
			if err := s.FreePropertyID(c.GetKey()); err != nil {
				return err
			}
		}
	}
	for _, kind := range []gstypes.TokenKind{gstypes.TokenLabel, gstypes.TokenRelationshipType, gstypes.TokenPropertyKey} {
		for _, c := range tx.tokenBuffer(kind).Changes() {
			if c.IsCreated() {
				if err := s.FreeTokenID(kind, c.GetKey()); err != nil {
					return err
				}
			}
		}
	}
	for _, c := range tx.Changes.SchemaRules.Changes() {
		if c.IsCreated() {
			inval.RemoveSchemaRuleFromCache(c.GetKey())
		}
	}

	for _, rec := range tx.Changes.DynamicWrites() {
		if err := s.FreeDynamicID(rec.ID); err != nil {
			return err
		}
	}
	for _, headID := range tx.Changes.DynamicFrees() {
		// A dynamic chain freed mid-transaction (e.g. superseded by a
		// later change in the same transaction) was never persisted, so
		// there is nothing on disk to free; freeing the in-memory
		// allocation above already covers it when it was also a fresh
		// allocation. Chains that existed before this transaction are
		// left untouched by rollback — they are still live.
		_ = headID
	}

	tx.rolledBack = true
	tx.Changes.ReleaseRelationshipLocks()
	tx.Changes.Clear()
	metrics.TransactionsRolledBack.Inc()
	log.WithTxID(tx.id).Info().Msg("transaction rolled back")
	return nil
}

func (tx *Transaction) tokenBuffer(kind gstypes.TokenKind) *changebuf.RecordChanges[int32, *gstypes.TokenRecord] {
	switch kind {
	case gstypes.TokenLabel:
		return tx.Changes.LabelTokens
	case gstypes.TokenRelationshipType:
		return tx.Changes.RelTypeTokens
	default:
		return tx.Changes.PropKeyTokens
	}
}

func sortedNodeCommands(cmds []command.NodeCommand) []command.NodeCommand {
	out := append([]command.NodeCommand(nil), cmds...)
	sort.Slice(out, func(i, j int) bool { return out[i].After.ID < out[j].After.ID })
	return out
}
