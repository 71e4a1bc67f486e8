package store

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/graphstore/pkg/gstypes"
	bolt "go.etcd.io/bbolt"
)

// GetProperty loads a property record by id. Blocks that spill to
// dynamic records are returned as staged (not yet heavy); call
// EnsureHeavy before reading their values.
func (s *Store) GetProperty(id int64) (*gstypes.PropertyRecord, error) {
	var p gstypes.PropertyRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketProperties).Get(itob(id))
		if data == nil {
			return fmt.Errorf("property record %d not found", id)
		}
		return json.Unmarshal(data, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PutProperty persists a property record.
func (s *Store) PutProperty(p *gstypes.PropertyRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketProperties).Put(itob(p.ID), data)
	})
}

// NextPropertyID allocates the next property-record id.
func (s *Store) NextPropertyID() (int64, error) {
	var id int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		id, err = nextID(tx, bucketProperties, bucketFreeProperties)
		return err
	})
	return id, err
}

// FreePropertyID reclaims a property-record id for reuse.
func (s *Store) FreePropertyID(id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return freeID(tx, bucketFreeProperties, id)
	})
}

// EnsureHeavy resolves every block's dynamic value chain (string/array
// types) into a decoded, cached value, so a mutator can safely read or
// overwrite the block without a second round trip to the dynamic-record
// store.
func (s *Store) EnsureHeavy(p *gstypes.PropertyRecord) error {
	for i := range p.Blocks {
		b := &p.Blocks[i]
		if b.Type != gstypes.PropertyTypeString && b.Type != gstypes.PropertyTypeArray {
			continue
		}
		if _, heavy := b.Value(); heavy {
			continue
		}
		raw, err := s.ReadChain(b.DynamicRecordID)
		if err != nil {
			return fmt.Errorf("ensure heavy property %d block %d: %w", p.ID, b.KeyID, err)
		}
		if b.Type == gstypes.PropertyTypeString {
			b.SetValue(string(raw))
		} else {
			var arr []any
			if err := json.Unmarshal(raw, &arr); err != nil {
				return fmt.Errorf("ensure heavy property %d block %d: decode array: %w", p.ID, b.KeyID, err)
			}
			b.SetValue(arr)
		}
	}
	return nil
}
