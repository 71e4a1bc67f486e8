package store

import (
	"testing"

	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(Config{DataDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNodeRoundTrip(t *testing.T) {
	s := openTestStore(t)

	id, err := s.NextNodeID()
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	n := &gstypes.Node{ID: id, InUse: true, Created: true, NextRel: gstypes.NoID, NextProp: gstypes.NoID}
	require.NoError(t, s.PutNode(n))

	loaded, err := s.GetNode(id)
	require.NoError(t, err)
	assert.Equal(t, n, loaded)

	id2, err := s.NextNodeID()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id2)
}

func TestNodeIDReclaim(t *testing.T) {
	s := openTestStore(t)

	id, err := s.NextNodeID()
	require.NoError(t, err)
	require.NoError(t, s.FreeNodeID(id))

	reused, err := s.NextNodeID()
	require.NoError(t, err)
	assert.Equal(t, id, reused, "freed id should be handed back before a fresh sequence value")
}

func TestDynamicAllocateAndReadChain(t *testing.T) {
	s := openTestStore(t)

	data := []byte("this value is long enough to span more than one dynamic record chunk")
	records, err := s.AllocateFrom(data, gstypes.DynamicString)
	require.NoError(t, err)
	require.True(t, len(records) > 1)

	for _, r := range records {
		require.NoError(t, s.PutDynamic(r))
	}

	roundTrip, err := s.ReadChain(records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, data, roundTrip)

	require.NoError(t, s.FreeChain(records[0].ID))
}

func TestTokenFindByName(t *testing.T) {
	s := openTestStore(t)

	id, err := s.NextTokenID(gstypes.TokenLabel)
	require.NoError(t, err)
	tok := &gstypes.TokenRecord{ID: id, InUse: true, Created: true, Kind: gstypes.TokenLabel, Name: "Person", NameRecordID: gstypes.NoID}
	require.NoError(t, s.PutToken(tok))

	found, err := s.FindTokenByName(gstypes.TokenLabel, "Person")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)

	missing, err := s.FindTokenByName(gstypes.TokenLabel, "Company")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLastCommittedTxMonotonic(t *testing.T) {
	s := openTestStore(t)

	v, err := s.LastCommittedTx()
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, s.AdvanceLastCommittedTx(1))
	v, err = s.LastCommittedTx()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
