package store

import (
	"encoding/json"

	"github.com/cuemby/graphstore/pkg/gstypes"
	bolt "go.etcd.io/bbolt"
)

// GetNeoStoreRecord loads the single graph-level record, defaulting to an
// empty one (NextProp = NoID) if it has never been written.
func (s *Store) GetNeoStoreRecord() (*gstypes.NeoStoreRecord, error) {
	var n gstypes.NeoStoreRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketNeoStore).Get(neoStoreKey)
		if data == nil {
			n = gstypes.NeoStoreRecord{NextProp: gstypes.NoID}
			return nil
		}
		return json.Unmarshal(data, &n)
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// PutNeoStoreRecord persists the single graph-level record.
func (s *Store) PutNeoStoreRecord(n *gstypes.NeoStoreRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketNeoStore).Put(neoStoreKey, data)
	})
}

// LastCommittedTx and AdvanceLastCommittedTx track the store's commit
// counter. They live in the neostore bucket under a fixed key distinct
// from the singleton record itself.
var lastCommittedTxKey = []byte("last_committed_tx")

// LastCommittedTx returns the id of the most recently committed
// transaction, or 0 if none has committed yet.
func (s *Store) LastCommittedTx() (int64, error) {
	var v int64
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketNeoStore).Get(lastCommittedTxKey)
		if data == nil {
			v = 0
			return nil
		}
		v = btoi(data)
		return nil
	})
	return v, err
}

// AdvanceLastCommittedTx sets the last-committed counter to txID. Callers
// are responsible for enforcing monotonicity; this method only
// performs the write.
func (s *Store) AdvanceLastCommittedTx(txID int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNeoStore).Put(lastCommittedTxKey, itob(txID))
	})
}
