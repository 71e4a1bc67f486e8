package command

import (
	"github.com/cuemby/graphstore/pkg/changebuf"
	"github.com/cuemby/graphstore/pkg/gstypes"
)

// Command is the marker interface every concrete command type
// implements, so a Sink can hold a single ordered []Command.
type Command interface {
	isCommand()
}

// NodeCommand carries a node record's before/after state and mode.
// Before is nil for a created node.
type NodeCommand struct {
	Before *gstypes.Node
	After  *gstypes.Node
	Mode   changebuf.Mode
}

func (NodeCommand) isCommand() {}

// RelationshipCommand carries a relationship's after state. Relationship
// records don't track before-state, so there's no Before field to
// carry.
type RelationshipCommand struct {
	After *gstypes.Relationship
	Mode  changebuf.Mode
}

func (RelationshipCommand) isCommand() {}

// RelationshipGroupCommand carries a relationship-group record's after
// state; groups don't track before-state either.
type RelationshipGroupCommand struct {
	After *gstypes.RelationshipGroup
	Mode  changebuf.Mode
}

func (RelationshipGroupCommand) isCommand() {}

// PropertyCommand carries a property record's before/after state. Before
// is needed at commit to free the dynamic value records of removed or
// replaced blocks.
type PropertyCommand struct {
	Before *gstypes.PropertyRecord
	After  *gstypes.PropertyRecord
	Mode   changebuf.Mode
}

func (PropertyCommand) isCommand() {}

// TokenCommand carries one of the three token kinds (label, relationship
// type, property key).
type TokenCommand struct {
	Kind  gstypes.TokenKind
	After *gstypes.TokenRecord
	Mode  changebuf.Mode
}

func (TokenCommand) isCommand() {}

// SchemaRuleCommand carries a schema rule's before/after dynamic-record
// serialization plus the rule itself, and the id of the transaction that
// produced it (commit stamps TxID before execution). CorrelationID tags
// the command for log correlation across prepare and commit; it carries
// no on-disk meaning.
type SchemaRuleCommand struct {
	Before        []*gstypes.DynamicRecord
	After         []*gstypes.DynamicRecord
	Rule          *gstypes.SchemaRuleRecord
	Mode          changebuf.Mode
	TxID          int64
	CorrelationID string
}

func (SchemaRuleCommand) isCommand() {}

// NeoStoreCommand carries the graph-singleton property-chain-head
// mutation. At most one of these exists per transaction.
type NeoStoreCommand struct {
	After *gstypes.NeoStoreRecord
	Mode  changebuf.Mode
}

func (NeoStoreCommand) isCommand() {}
