package store

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/graphstore/pkg/gstypes"
	bolt "go.etcd.io/bbolt"
)

// GetRelationship loads a relationship record by id.
func (s *Store) GetRelationship(id int64) (*gstypes.Relationship, error) {
	var r gstypes.Relationship
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRelationships).Get(itob(id))
		if data == nil {
			return fmt.Errorf("relationship %d not found", id)
		}
		return json.Unmarshal(data, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// PutRelationship persists a relationship record.
func (s *Store) PutRelationship(r *gstypes.Relationship) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketRelationships).Put(itob(r.ID), data)
	})
}

// NextRelationshipID allocates the next relationship id.
func (s *Store) NextRelationshipID() (int64, error) {
	var id int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		id, err = nextID(tx, bucketRelationships, bucketFreeRelationships)
		return err
	})
	return id, err
}

// FreeRelationshipID reclaims a relationship id for reuse.
func (s *Store) FreeRelationshipID(id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return freeID(tx, bucketFreeRelationships, id)
	})
}
