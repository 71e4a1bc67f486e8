package store

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/graphstore/pkg/gstypes"
	bolt "go.etcd.io/bbolt"
)

// GetDynamic loads a single dynamic record by id.
func (s *Store) GetDynamic(id int64) (*gstypes.DynamicRecord, error) {
	var d gstypes.DynamicRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDynamics).Get(itob(id))
		if data == nil {
			return fmt.Errorf("dynamic record %d not found", id)
		}
		return json.Unmarshal(data, &d)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// PutDynamic persists a single dynamic record.
func (s *Store) PutDynamic(d *gstypes.DynamicRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(d)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketDynamics).Put(itob(d.ID), data)
	})
}

// NextDynamicID allocates the next dynamic-record id.
func (s *Store) NextDynamicID() (int64, error) {
	var id int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		id, err = nextID(tx, bucketDynamics, bucketFreeDynamics)
		return err
	})
	return id, err
}

// FreeDynamicID reclaims a single dynamic-record id for reuse.
func (s *Store) FreeDynamicID(id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return freeID(tx, bucketFreeDynamics, id)
	})
}

// AllocateFrom splits data into a chain of fresh dynamic records of the
// given type, each holding at most DynamicRecordPayloadBytes bytes, and
// returns the chain head-first. It does not persist the records; callers
// (property/schema/token encoding) stage them into the change buffer and
// let commit write them.
func (s *Store) AllocateFrom(data []byte, kind gstypes.DynamicRecordType) ([]*gstypes.DynamicRecord, error) {
	if len(data) == 0 {
		id, err := s.NextDynamicID()
		if err != nil {
			return nil, err
		}
		return []*gstypes.DynamicRecord{{ID: id, InUse: true, Created: true, Type: kind, Next: gstypes.NoID}}, nil
	}

	var records []*gstypes.DynamicRecord
	for offset := 0; offset < len(data); offset += gstypes.DynamicRecordPayloadBytes {
		end := offset + gstypes.DynamicRecordPayloadBytes
		if end > len(data) {
			end = len(data)
		}
		id, err := s.NextDynamicID()
		if err != nil {
			return nil, err
		}
		records = append(records, &gstypes.DynamicRecord{
			ID:      id,
			InUse:   true,
			Created: true,
			Type:    kind,
			Next:    gstypes.NoID,
			Data:    append([]byte(nil), data[offset:end]...),
		})
	}
	for i := 0; i < len(records)-1; i++ {
		records[i].Next = records[i+1].ID
	}
	return records, nil
}

// ReadChain follows a dynamic-record chain starting at headID and
// concatenates its Data fields. headID of gstypes.NoID yields nil, nil.
func (s *Store) ReadChain(headID int64) ([]byte, error) {
	if headID == gstypes.NoID {
		return nil, nil
	}
	var out []byte
	id := headID
	for id != gstypes.NoID {
		d, err := s.GetDynamic(id)
		if err != nil {
			return nil, err
		}
		out = append(out, d.Data...)
		id = d.Next
	}
	return out, nil
}

// FreeChain marks every dynamic record reachable from headID as free for
// reuse.
func (s *Store) FreeChain(headID int64) error {
	id := headID
	for id != gstypes.NoID {
		d, err := s.GetDynamic(id)
		if err != nil {
			return err
		}
		if err := s.FreeDynamicID(d.ID); err != nil {
			return err
		}
		id = d.Next
	}
	return nil
}

// FreeStringBlockID frees the dynamic record chain backing an oversized
// string property value.
func (s *Store) FreeStringBlockID(headID int64) error {
	return s.FreeChain(headID)
}

// FreeArrayBlockID frees the dynamic record chain backing an oversized
// array property value.
func (s *Store) FreeArrayBlockID(headID int64) error {
	return s.FreeChain(headID)
}
