package command

import (
	"testing"

	"github.com/cuemby/graphstore/pkg/changebuf"
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPreservesAppendOrder(t *testing.T) {
	l := NewLog()
	require.NoError(t, l.AddCommand(NodeCommand{After: &gstypes.Node{ID: 1}, Mode: changebuf.ModeCreate}))
	require.NoError(t, l.AddCommand(TokenCommand{Kind: gstypes.TokenLabel, After: &gstypes.TokenRecord{ID: 1}, Mode: changebuf.ModeCreate}))

	assert.Equal(t, 2, l.Len())
	_, ok := l.Commands()[0].(NodeCommand)
	assert.True(t, ok)
	_, ok = l.Commands()[1].(TokenCommand)
	assert.True(t, ok)
}

func TestBatchSortsCommandsByKind(t *testing.T) {
	cmds := []Command{
		NodeCommand{After: &gstypes.Node{ID: 1}, Mode: changebuf.ModeCreate},
		TokenCommand{Kind: gstypes.TokenLabel, After: &gstypes.TokenRecord{ID: 2}, Mode: changebuf.ModeCreate},
		RelationshipCommand{After: &gstypes.Relationship{ID: 3}, Mode: changebuf.ModeCreate},
		PropertyCommand{After: &gstypes.PropertyRecord{ID: 4}, Mode: changebuf.ModeCreate},
		NeoStoreCommand{After: &gstypes.NeoStoreRecord{NextProp: 4}, Mode: changebuf.ModeUpdate},
	}

	b := NewBatch(cmds)

	require.Len(t, b.Nodes, 1)
	require.Len(t, b.Tokens, 1)
	require.Len(t, b.Relationships, 1)
	require.Len(t, b.Properties, 1)
	require.NotNil(t, b.NeoStore)
	assert.Equal(t, int64(4), b.NeoStore.After.NextProp)
}
