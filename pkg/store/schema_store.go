package store

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/graphstore/pkg/gstypes"
	bolt "go.etcd.io/bbolt"
)

// schemaRuleWire is the persisted shape of a schema rule: its structured
// fields plus the dynamic record chain it was serialized into. Keeping
// both lets GetSchemaRule hand back a fully formed SchemaRuleRecord
// without re-walking the dynamic chain on every load.
type schemaRuleWire struct {
	ID             int64
	Kind           gstypes.SchemaRuleKind
	LabelID        int32
	PropertyKeyID  int32
	DynamicRecords []*gstypes.DynamicRecord
}

// GetSchemaRule loads a schema rule record by id.
func (s *Store) GetSchemaRule(id int64) (*gstypes.SchemaRuleRecord, error) {
	var w schemaRuleWire
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSchemaRules).Get(itob(id))
		if data == nil {
			return fmt.Errorf("schema rule %d not found", id)
		}
		return json.Unmarshal(data, &w)
	})
	if err != nil {
		return nil, err
	}
	return &gstypes.SchemaRuleRecord{
		ID:             w.ID,
		Kind:           w.Kind,
		LabelID:        w.LabelID,
		PropertyKeyID:  w.PropertyKeyID,
		DynamicRecords: w.DynamicRecords,
	}, nil
}

// PutSchemaRule persists a schema rule record.
func (s *Store) PutSchemaRule(r *gstypes.SchemaRuleRecord) error {
	w := schemaRuleWire{
		ID:             r.ID,
		Kind:           r.Kind,
		LabelID:        r.LabelID,
		PropertyKeyID:  r.PropertyKeyID,
		DynamicRecords: r.DynamicRecords,
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(w)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSchemaRules).Put(itob(r.ID), data)
	})
}

// DeleteSchemaRule removes a schema rule record outright (schema rules
// are dropped, not tombstoned, once their dynamic chain is freed).
func (s *Store) DeleteSchemaRule(id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSchemaRules).Delete(itob(id))
	})
}

// NextSchemaRuleID allocates the next schema rule id from the schema
// rule bucket's own sequence, starting at 1. There is no free-id bucket
// for schema rules, so their ids are never reused.
func (s *Store) NextSchemaRuleID() (int64, error) {
	var id int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		seq, err := tx.Bucket(bucketSchemaRules).NextSequence()
		if err != nil {
			return err
		}
		id = int64(seq)
		return nil
	})
	return id, err
}
