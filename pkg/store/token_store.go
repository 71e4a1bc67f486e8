package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cuemby/graphstore/pkg/gstypes"
	bolt "go.etcd.io/bbolt"
)

func tokenBuckets(kind gstypes.TokenKind) (main, free []byte, err error) {
	switch kind {
	case gstypes.TokenLabel:
		return bucketLabelTokens, bucketFreeLabelTokens, nil
	case gstypes.TokenRelationshipType:
		return bucketRelTypeTokens, bucketFreeRelTypeTokens, nil
	case gstypes.TokenPropertyKey:
		return bucketPropKeyTokens, bucketFreePropKeyTokens, nil
	default:
		return nil, nil, fmt.Errorf("unknown token kind %v", kind)
	}
}

func i32tob(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func btoi32(b []byte) int32 {
	return int32(binary.BigEndian.Uint32(b))
}

// GetToken loads a token record of the given kind by id.
func (s *Store) GetToken(kind gstypes.TokenKind, id int32) (*gstypes.TokenRecord, error) {
	main, _, err := tokenBuckets(kind)
	if err != nil {
		return nil, err
	}
	var t gstypes.TokenRecord
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(main).Get(i32tob(id))
		if data == nil {
			return fmt.Errorf("%s token %d not found", kind, id)
		}
		return json.Unmarshal(data, &t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PutToken persists a token record.
func (s *Store) PutToken(t *gstypes.TokenRecord) error {
	main, _, err := tokenBuckets(t.Kind)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		return tx.Bucket(main).Put(i32tob(t.ID), data)
	})
}

// NextTokenID allocates the next id in a token namespace.
func (s *Store) NextTokenID(kind gstypes.TokenKind) (int32, error) {
	main, free, err := tokenBuckets(kind)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.Update(func(tx *bolt.Tx) error {
		var err error
		id, err = nextID(tx, main, free)
		return err
	})
	return int32(id), err
}

// FreeTokenID reclaims a token id for reuse.
func (s *Store) FreeTokenID(kind gstypes.TokenKind, id int32) error {
	_, free, err := tokenBuckets(kind)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return freeID(tx, free, int64(id))
	})
}

// FindTokenByName scans a token namespace for an existing token with the
// given name, returning (nil, nil) if none exists.
func (s *Store) FindTokenByName(kind gstypes.TokenKind, name string) (*gstypes.TokenRecord, error) {
	main, _, err := tokenBuckets(kind)
	if err != nil {
		return nil, err
	}
	var found *gstypes.TokenRecord
	err = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(main).ForEach(func(k, v []byte) error {
			var t gstypes.TokenRecord
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}
			if t.Name == name {
				found = &t
			}
			return nil
		})
	})
	return found, err
}
