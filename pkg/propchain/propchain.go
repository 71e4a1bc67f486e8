package propchain

import (
	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/metrics"
)

// AddProperty encodes value under keyID and places it on owner's
// property chain.
func AddProperty(ctx Context, owner gstypes.Primitive, keyID int32, value any) error {
	block, err := ctx.EncodeValue(keyID, value)
	if err != nil {
		return err
	}
	if err := placeBlock(ctx, owner, block); err != nil {
		return err
	}
	metrics.PropertyChainOps.WithLabelValues("add").Inc()
	return nil
}

// ChangeProperty re-encodes the value carried under keyID, freeing the
// old value's dynamic records, relocating the block if the new
// encoding no longer fits in its current record.
func ChangeProperty(ctx Context, owner gstypes.Primitive, keyID int32, value any) error {
	rec, idx, err := findBlock(ctx, owner, keyID)
	if err != nil {
		return err
	}

	old := rec.Blocks[idx]
	if err := ctx.FreeBlockValue(old); err != nil {
		return err
	}

	newBlock, err := ctx.EncodeValue(keyID, value)
	if err != nil {
		return err
	}

	if rec.UsedBytes()-old.Size()+newBlock.Size() <= gstypes.PropertyRecordPayloadBytes {
		rec.Blocks[idx] = newBlock
		metrics.PropertyChainOps.WithLabelValues("change").Inc()
		return nil
	}

	if err := unlinkBlock(ctx, owner, rec, idx); err != nil {
		return err
	}
	if err := placeBlock(ctx, owner, newBlock); err != nil {
		return err
	}
	metrics.PropertyChainOps.WithLabelValues("change").Inc()
	return nil
}

// RemoveProperty frees keyID's dynamic records (if any) and removes its
// block, unlinking the carrying record if it becomes empty.
func RemoveProperty(ctx Context, owner gstypes.Primitive, keyID int32) error {
	rec, idx, err := findBlock(ctx, owner, keyID)
	if err != nil {
		return err
	}
	if err := ctx.FreeBlockValue(rec.Blocks[idx]); err != nil {
		return err
	}
	if err := unlinkBlock(ctx, owner, rec, idx); err != nil {
		return err
	}
	metrics.PropertyChainOps.WithLabelValues("remove").Inc()
	return nil
}

func findBlock(ctx Context, owner gstypes.Primitive, keyID int32) (*gstypes.PropertyRecord, int, error) {
	id := ctx.OwnerHead(owner)
	for id != gstypes.NoID {
		rec, err := ctx.LoadProperty(id)
		if err != nil {
			return nil, -1, err
		}
		if idx := rec.IndexOfKey(keyID); idx >= 0 {
			return rec, idx, nil
		}
		id = rec.NextProp
	}
	return nil, -1, &UnknownPropertyError{KeyID: keyID}
}

// placeBlock appends block to the chain head if there's room, else
// splices a brand-new head record to carry it.
func placeBlock(ctx Context, owner gstypes.Primitive, block gstypes.PropertyBlock) error {
	headID := ctx.OwnerHead(owner)
	if headID != gstypes.NoID {
		head, err := ctx.LoadProperty(headID)
		if err != nil {
			return err
		}
		if head.UsedBytes()+block.Size() <= gstypes.PropertyRecordPayloadBytes {
			head.Blocks = append(head.Blocks, block)
			return nil
		}
	}

	id, err := ctx.AllocatePropertyID()
	if err != nil {
		return err
	}
	rec := ctx.NewProperty(id, owner)
	rec.InUse = true
	rec.Created = true
	rec.Owner = owner
	rec.PrevProp = gstypes.NoID
	rec.NextProp = headID
	rec.Blocks = []gstypes.PropertyBlock{block}

	if headID != gstypes.NoID {
		oldHead, err := ctx.LoadProperty(headID)
		if err != nil {
			return err
		}
		oldHead.PrevProp = id
	}
	ctx.SetOwnerHead(owner, id)
	return nil
}

// unlinkBlock removes the block at idx from rec. If rec still carries
// blocks afterward it's left in place; otherwise it's unlinked from
// the chain and deleted.
func unlinkBlock(ctx Context, owner gstypes.Primitive, rec *gstypes.PropertyRecord, idx int) error {
	rec.Blocks = append(rec.Blocks[:idx], rec.Blocks[idx+1:]...)
	if len(rec.Blocks) > 0 {
		return nil
	}
	return unlinkRecord(ctx, owner, rec)
}

func unlinkRecord(ctx Context, owner gstypes.Primitive, rec *gstypes.PropertyRecord) error {
	if rec.PrevProp != gstypes.NoID {
		prev, err := ctx.LoadProperty(rec.PrevProp)
		if err != nil {
			return err
		}
		prev.NextProp = rec.NextProp
	}
	if rec.NextProp != gstypes.NoID {
		next, err := ctx.LoadProperty(rec.NextProp)
		if err != nil {
			return err
		}
		next.PrevProp = rec.PrevProp
	}
	if ctx.OwnerHead(owner) == rec.ID {
		ctx.SetOwnerHead(owner, rec.NextProp)
	}
	ctx.DeleteProperty(rec.ID)
	rec.PrevProp = gstypes.NoID
	rec.NextProp = gstypes.NoID
	return nil
}
