package propindex

import (
	"github.com/cuemby/graphstore/pkg/changebuf"
	"github.com/cuemby/graphstore/pkg/gstypes"
)

// PropertyCommand is the slice of a property change commit exposes to
// the indexing service.
type PropertyCommand struct {
	Before *gstypes.PropertyRecord
	After  *gstypes.PropertyRecord
	Mode   changebuf.Mode
}

// NodeCommand is the slice of a node change commit exposes, keyed by
// node id in a LazyBatch so the indexing service can resolve a
// property command's owning node without a second store round trip.
type NodeCommand struct {
	Before *gstypes.Node
	After  *gstypes.Node
	Mode   changebuf.Mode
}

// LazyBatch is the view commit hands to Updater.UpdateIndexes: the
// commit's property commands plus its node commands indexed by id, for
// on-demand resolution rather than eager materialization.
type LazyBatch struct {
	propertyCommands []PropertyCommand
	nodeCommandsByID map[int64]NodeCommand
}

// NewLazyBatch builds a batch view over a commit's property and node
// commands.
func NewLazyBatch(propertyCommands []PropertyCommand, nodeCommandsByID map[int64]NodeCommand) *LazyBatch {
	return &LazyBatch{propertyCommands: propertyCommands, nodeCommandsByID: nodeCommandsByID}
}

// PropertyCommands returns every property command in this commit.
func (b *LazyBatch) PropertyCommands() []PropertyCommand {
	return b.propertyCommands
}

// NodeCommand looks up the node command for id, if this commit touched
// that node.
func (b *LazyBatch) NodeCommand(id int64) (NodeCommand, bool) {
	c, ok := b.nodeCommandsByID[id]
	return c, ok
}

// Empty reports whether this commit touched no node or property
// records at all, in which case commit skips submitting a batch
// entirely.
func (b *LazyBatch) Empty() bool {
	return len(b.propertyCommands) == 0 && len(b.nodeCommandsByID) == 0
}

// Updater is the property-index service's consumption hook.
type Updater interface {
	UpdateIndexes(batch *LazyBatch) error
}

// NoOp discards every batch. Used where no indexing service is wired.
type NoOp struct{}

func (NoOp) UpdateIndexes(*LazyBatch) error { return nil }

// Recorder keeps every batch it was handed, for test assertions.
type Recorder struct {
	Batches []*LazyBatch
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) UpdateIndexes(batch *LazyBatch) error {
	r.Batches = append(r.Batches, batch)
	return nil
}
