package store

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/graphstore/pkg/gstypes"
	bolt "go.etcd.io/bbolt"
)

// GetRelationshipGroup loads a relationship-group record by id.
func (s *Store) GetRelationshipGroup(id int64) (*gstypes.RelationshipGroup, error) {
	var g gstypes.RelationshipGroup
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRelGroups).Get(itob(id))
		if data == nil {
			return fmt.Errorf("relationship group %d not found", id)
		}
		return json.Unmarshal(data, &g)
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// PutRelationshipGroup persists a relationship-group record.
func (s *Store) PutRelationshipGroup(g *gstypes.RelationshipGroup) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketRelGroups).Put(itob(g.ID), data)
	})
}

// NextRelationshipGroupID allocates the next relationship-group id.
func (s *Store) NextRelationshipGroupID() (int64, error) {
	var id int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		id, err = nextID(tx, bucketRelGroups, bucketFreeRelGroups)
		return err
	})
	return id, err
}

// FreeRelationshipGroupID reclaims a relationship-group id for reuse.
func (s *Store) FreeRelationshipGroupID(id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return freeID(tx, bucketFreeRelGroups, id)
	})
}
