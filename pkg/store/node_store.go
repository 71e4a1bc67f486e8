package store

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/graphstore/pkg/gstypes"
	bolt "go.etcd.io/bbolt"
)

// GetNode loads a node record by id.
func (s *Store) GetNode(id int64) (*gstypes.Node, error) {
	var n gstypes.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketNodes).Get(itob(id))
		if data == nil {
			return fmt.Errorf("node %d not found", id)
		}
		return json.Unmarshal(data, &n)
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// PutNode persists a node record.
func (s *Store) PutNode(n *gstypes.Node) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketNodes).Put(itob(n.ID), data)
	})
}

// NextNodeID allocates the next node id, preferring a reclaimed id if
// rollback has freed one.
func (s *Store) NextNodeID() (int64, error) {
	var id int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		id, err = nextID(tx, bucketNodes, bucketFreeNodes)
		return err
	})
	return id, err
}

// FreeNodeID reclaims a node id for reuse (rollback only).
func (s *Store) FreeNodeID(id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return freeID(tx, bucketFreeNodes, id)
	})
}
