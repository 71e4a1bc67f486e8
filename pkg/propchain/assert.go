package propchain

import (
	"fmt"

	"github.com/cuemby/graphstore/pkg/gstypes"
)

// AssertPropertyChain is a debug invariant check: the
// head's prev must be NONE, the tail's next must be NONE, every record
// in between must be inUse, and each pair's prev/next pointers must
// agree with each other.
func AssertPropertyChain(ctx Context, owner gstypes.Primitive) error {
	id := ctx.OwnerHead(owner)
	if id == gstypes.NoID {
		return nil
	}

	var prev *gstypes.PropertyRecord
	for id != gstypes.NoID {
		rec, err := ctx.LoadProperty(id)
		if err != nil {
			return err
		}
		if !rec.InUse {
			return &ChainCorruptError{Detail: fmt.Sprintf("record %d not in use", id)}
		}
		if prev == nil {
			if rec.PrevProp != gstypes.NoID {
				return &ChainCorruptError{Detail: "chain head has a non-NONE prev"}
			}
		} else if rec.PrevProp != prev.ID || prev.NextProp != rec.ID {
			return &ChainCorruptError{Detail: fmt.Sprintf("broken link between %d and %d", prev.ID, rec.ID)}
		}
		prev = rec
		id = rec.NextProp
	}
	if prev.NextProp != gstypes.NoID {
		return &ChainCorruptError{Detail: "chain tail has a non-NONE next"}
	}
	return nil
}
