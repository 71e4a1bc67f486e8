package txn

import (
	"encoding/binary"

	"github.com/cuemby/graphstore/pkg/command"
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/log"
	"github.com/cuemby/graphstore/pkg/metrics"
	"github.com/cuemby/graphstore/pkg/store"
)

// Recover replays a previously logged command stream against the
// store without allocating fresh ids: every record id in cmds was
// already handed out by the transaction that originally prepared them,
// so recovery only needs to persist the recorded after-state and
// refresh the id generators from the store's resulting high-ids once
// done, in case the crash happened after some records were written but
// before the id generators themselves were durable.
//
// Recover is idempotent with respect to txID: replaying a batch whose
// txID is at or before the store's current last-committed-tx is a
// no-op, so a recovery sweep can safely start from the oldest
// unconfirmed transaction in the log.
//
// dynamicWrites and dynamicFrees carry the free-floating dynamic
// records (label arrays, spilled string/array property values, token
// names) the original transaction allocated or freed outside the
// command taxonomy proper; a durable log entry bundles these alongside
// its command the same way SchemaRuleCommand bundles its own dynamic
// chain inline, so the log reader assembles them from the same entry
// before calling Recover.
func Recover(deps Dependencies, txID int64, cmds []command.Command, dynamicWrites []*gstypes.DynamicRecord, dynamicFrees []int64) error {
	last, err := deps.Store.LastCommittedTx()
	if err != nil {
		return err
	}
	if txID <= last {
		log.WithTxID(txID).Debug().Int64("last_committed_tx", last).Msg("recovery skipping already-applied transaction")
		return nil
	}
	if txID != last+1 {
		return &XAError{Op: "recover", Detail: "recovered tx id is not last committed + 1"}
	}

	deps.Store.SetRecovery(true)
	defer deps.Store.SetRecovery(false)

	resolver := storeResolver{store: deps.Store}
	if err := execute(deps, cmds, txID, dynamicWrites, dynamicFrees, resolver, true); err != nil {
		return err
	}

	metrics.TransactionsRecovered.Inc()
	log.WithTxID(txID).Info().Int("command_count", len(cmds)).Msg("transaction recovered")
	return nil
}

// storeResolver implements labelindex.Resolver directly against the
// durable store, for recovery replay where no mutation.ChangeSet
// exists to resolve a lazily-loaded label chain.
type storeResolver struct {
	store *store.Store
}

func (r storeResolver) ResolveLabels(f gstypes.LabelField) ([]int32, bool) {
	if f.Inline {
		return f.InlineLabels(), true
	}
	if f.DynamicRecordID == gstypes.NoID {
		return nil, false
	}
	raw, err := r.store.ReadChain(f.DynamicRecordID)
	if err != nil {
		return nil, false
	}
	ids := make([]int32, len(raw)/4)
	for i := range ids {
		ids[i] = int32(binary.BigEndian.Uint32(raw[i*4:]))
	}
	return ids, true
}
