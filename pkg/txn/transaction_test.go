package txn

import (
	"testing"

	"github.com/cuemby/graphstore/pkg/cache"
	"github.com/cuemby/graphstore/pkg/command"
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/locks"
	"github.com/cuemby/graphstore/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(store.Config{DataDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestDeps(s *store.Store) Dependencies {
	return Dependencies{
		Store: s,
		Sink:  command.NewLog(),
		Locks: locks.NewInMemory(),
		Cache: cache.NewRecorder(),
	}
}

func TestPrepareThenCommitPersistsNode(t *testing.T) {
	s := openTestStore(t)
	deps := newTestDeps(s)

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)

	n, err := tx.Changes.CreateNode()
	require.NoError(t, err)

	_, err = tx.Prepare()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	persisted, err := s.GetNode(n.ID)
	require.NoError(t, err)
	assert.True(t, persisted.InUse)

	last, err := s.LastCommittedTx()
	require.NoError(t, err)
	assert.Equal(t, int64(1), last)
}

func TestCommitWithoutPrepareFails(t *testing.T) {
	s := openTestStore(t)
	deps := newTestDeps(s)

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)

	_, err = tx.Changes.CreateNode()
	require.NoError(t, err)

	err = tx.Commit()
	var xa *XAError
	assert.ErrorAs(t, err, &xa)
}

func TestDoublePrepareFails(t *testing.T) {
	s := openTestStore(t)
	deps := newTestDeps(s)

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)

	_, err = tx.Changes.CreateNode()
	require.NoError(t, err)

	_, err = tx.Prepare()
	require.NoError(t, err)

	_, err = tx.Prepare()
	var xa *XAError
	assert.ErrorAs(t, err, &xa)
}

func TestCommitAfterCommitFails(t *testing.T) {
	s := openTestStore(t)
	deps := newTestDeps(s)

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)

	_, err = tx.Changes.CreateNode()
	require.NoError(t, err)

	_, err = tx.Prepare()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	err = tx.Commit()
	var xa *XAError
	assert.ErrorAs(t, err, &xa)
}

func TestRollbackReclaimsNodeID(t *testing.T) {
	s := openTestStore(t)
	deps := newTestDeps(s)

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)

	n, err := tx.Changes.CreateNode()
	require.NoError(t, err)

	require.NoError(t, tx.Rollback())

	tx2, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)
	n2, err := tx2.Changes.CreateNode()
	require.NoError(t, err)
	assert.Equal(t, n.ID, n2.ID)
}

func TestRollbackAfterCommitFails(t *testing.T) {
	s := openTestStore(t)
	deps := newTestDeps(s)

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)
	_, err = tx.Changes.CreateNode()
	require.NoError(t, err)
	_, err = tx.Prepare()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	err = tx.Rollback()
	var xa *XAError
	assert.ErrorAs(t, err, &xa)
}

func TestCommitSplicesRelationshipAndPersistsBothEndpoints(t *testing.T) {
	s := openTestStore(t)
	deps := newTestDeps(s)

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)

	a, err := tx.Changes.CreateNode()
	require.NoError(t, err)
	b, err := tx.Changes.CreateNode()
	require.NoError(t, err)
	rel, err := tx.Changes.CreateRelationship(9, a.ID, b.ID)
	require.NoError(t, err)

	_, err = tx.Prepare()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	persistedA, err := s.GetNode(a.ID)
	require.NoError(t, err)
	assert.Equal(t, rel.ID, persistedA.NextRel)

	persistedRel, err := s.GetRelationship(rel.ID)
	require.NoError(t, err)
	assert.True(t, persistedRel.InUse)
}

func TestCommitPatchesDeletedRelationshipInCache(t *testing.T) {
	s := openTestStore(t)
	recorder := cache.NewRecorder()
	deps := newTestDeps(s)
	deps.Cache = recorder

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)
	a, err := tx.Changes.CreateNode()
	require.NoError(t, err)
	b, err := tx.Changes.CreateNode()
	require.NoError(t, err)
	rel, err := tx.Changes.CreateRelationship(1, a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Changes.DeleteRelationship(rel.ID))

	_, err = tx.Prepare()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, recorder.PatchedRelationships, 1)
	patched := recorder.PatchedRelationships[0]
	assert.Equal(t, rel.ID, patched.RelID)
	assert.Equal(t, gstypes.NoID, patched.FirstNextRel)
	assert.Equal(t, gstypes.NoID, patched.SecondNextRel)
}

func TestCommitAppliesLabelUpdatesToCache(t *testing.T) {
	s := openTestStore(t)
	recorder := cache.NewRecorder()
	deps := newTestDeps(s)
	deps.Cache = recorder

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)
	n, err := tx.Changes.CreateNode()
	require.NoError(t, err)
	require.NoError(t, tx.Changes.AddLabel(n.ID, 3))

	_, err = tx.Prepare()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, recorder.LabelUpdateBatches, 1)
	batch := recorder.LabelUpdateBatches[0]
	require.Len(t, batch, 1)
	assert.Equal(t, n.ID, batch[0].NodeID)
	assert.Equal(t, []int32{3}, batch[0].Added)
}

func TestRecoverReplaysLoggedCommandsIdempotently(t *testing.T) {
	s := openTestStore(t)
	log := command.NewLog()
	deps := newTestDeps(s)
	deps.Sink = log

	tx, err := New(1, Config{DenseNodeThreshold: 50}, deps)
	require.NoError(t, err)
	n, err := tx.Changes.CreateNode()
	require.NoError(t, err)

	cmds, err := tx.Prepare()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	// Replay the same logged batch against the same store through the
	// recovery entrypoint: tx 1 is already applied, so it must be a
	// no-op.
	require.NoError(t, Recover(deps, 1, cmds, nil, nil))

	persisted, err := s.GetNode(n.ID)
	require.NoError(t, err)
	assert.True(t, persisted.InUse)
}

func TestRecoverAppliesUnseenTransaction(t *testing.T) {
	live := openTestStore(t)
	liveDeps := newTestDeps(live)
	tx, err := New(1, Config{DenseNodeThreshold: 50}, liveDeps)
	require.NoError(t, err)
	n, err := tx.Changes.CreateNode()
	require.NoError(t, err)
	cmds, err := tx.Prepare()
	require.NoError(t, err)

	// A second, never-committed store represents what's on disk after a
	// crash right after the command was logged but before commit ran.
	crashed := openTestStore(t)
	crashedDeps := newTestDeps(crashed)
	require.NoError(t, Recover(crashedDeps, 1, cmds, nil, nil))

	persisted, err := crashed.GetNode(n.ID)
	require.NoError(t, err)
	assert.True(t, persisted.InUse)

	last, err := crashed.LastCommittedTx()
	require.NoError(t, err)
	assert.Equal(t, int64(1), last)
}
