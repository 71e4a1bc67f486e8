package store

import (
	"encoding/binary"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketNodes        = []byte("nodes")
	bucketRelationships = []byte("relationships")
	bucketRelGroups    = []byte("relationship_groups")
	bucketProperties   = []byte("properties")
	bucketDynamics     = []byte("dynamic_records")
	bucketLabelTokens  = []byte("label_tokens")
	bucketRelTypeTokens = []byte("relationship_type_tokens")
	bucketPropKeyTokens = []byte("property_key_tokens")
	bucketSchemaRules  = []byte("schema_rules")
	bucketNeoStore     = []byte("neostore")

	// one "free ids" bucket per record-kind bucket above, holding ids
	// reclaimed by rollback that are available for reuse before NextID
	// reaches for a fresh sequence value.
	bucketFreeNodes        = []byte("free_nodes")
	bucketFreeRelationships = []byte("free_relationships")
	bucketFreeRelGroups    = []byte("free_relationship_groups")
	bucketFreeProperties   = []byte("free_properties")
	bucketFreeDynamics     = []byte("free_dynamic_records")
	bucketFreeLabelTokens  = []byte("free_label_tokens")
	bucketFreeRelTypeTokens = []byte("free_relationship_type_tokens")
	bucketFreePropKeyTokens = []byte("free_property_key_tokens")

	allBuckets = [][]byte{
		bucketNodes, bucketRelationships, bucketRelGroups, bucketProperties,
		bucketDynamics, bucketLabelTokens, bucketRelTypeTokens, bucketPropKeyTokens,
		bucketSchemaRules, bucketNeoStore,
		bucketFreeNodes, bucketFreeRelationships, bucketFreeRelGroups,
		bucketFreeProperties, bucketFreeDynamics, bucketFreeLabelTokens,
		bucketFreeRelTypeTokens, bucketFreePropKeyTokens,
	}

	neoStoreKey = []byte("neostore")
)

// Store implements the record-store contract on top of bbolt, one
// bucket per record kind.
type Store struct {
	db        *bolt.DB
	recovery  bool // set while a recovery replay is in progress
}

// Config configures Open.
type Config struct {
	DataDir string
}

// Open creates (or reopens) the bbolt-backed record store under
// cfg.DataDir, ensuring every bucket this store needs exists.
func Open(cfg Config) (*Store, error) {
	dbPath := filepath.Join(cfg.DataDir, "graphstore.db")
	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetRecovery toggles the recovery flag commit consults when deciding
// whether to allocate fresh ids.
func (s *Store) SetRecovery(recovery bool) {
	s.recovery = recovery
}

// InRecovery reports whether the store is currently replaying committed
// commands during crash recovery.
func (s *Store) InRecovery() bool {
	return s.recovery
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// nextID pops a reclaimed id from freeBucket if one is available,
// otherwise allocates a fresh one from mainBucket's sequence counter.
func nextID(tx *bolt.Tx, mainBucket, freeBucket []byte) (int64, error) {
	fb := tx.Bucket(freeBucket)
	c := fb.Cursor()
	if k, _ := c.First(); k != nil {
		id := btoi(k)
		if err := fb.Delete(k); err != nil {
			return 0, err
		}
		return id, nil
	}

	mb := tx.Bucket(mainBucket)
	seq, err := mb.NextSequence()
	if err != nil {
		return 0, err
	}
	return int64(seq - 1), nil
}

// freeID reclaims id into freeBucket so a later nextID call can reuse
// it (rollback's id-reclamation path).
func freeID(tx *bolt.Tx, freeBucket []byte, id int64) error {
	fb := tx.Bucket(freeBucket)
	return fb.Put(itob(id), []byte{})
}

// HighID reports one past the greatest id ever handed out for a record
// kind, used by recovery to refresh id generators from store high-ids.
func (s *Store) HighID(kind RecordKind) (int64, error) {
	var bucket []byte
	switch kind {
	case KindNode:
		bucket = bucketNodes
	case KindRelationship:
		bucket = bucketRelationships
	case KindRelationshipGroup:
		bucket = bucketRelGroups
	case KindProperty:
		bucket = bucketProperties
	case KindDynamic:
		bucket = bucketDynamics
	default:
		return 0, fmt.Errorf("unknown record kind %d", kind)
	}

	var high int64
	err := s.db.View(func(tx *bolt.Tx) error {
		high = int64(tx.Bucket(bucket).Sequence())
		return nil
	})
	return high, err
}

// BumpSequence advances a record kind's id-sequence counter to at least
// atLeast, without allocating an id. Recovery replay calls this after
// applying a batch of commands carrying ids that were never obtained
// through this store's own NextID during the replay itself, so a
// subsequent live NextID call doesn't hand out an id already in use.
func (s *Store) BumpSequence(kind RecordKind, atLeast int64) error {
	var bucket []byte
	switch kind {
	case KindNode:
		bucket = bucketNodes
	case KindRelationship:
		bucket = bucketRelationships
	case KindRelationshipGroup:
		bucket = bucketRelGroups
	case KindProperty:
		bucket = bucketProperties
	case KindDynamic:
		bucket = bucketDynamics
	default:
		return fmt.Errorf("unknown record kind %d", kind)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if int64(b.Sequence()) >= atLeast {
			return nil
		}
		return b.SetSequence(uint64(atLeast))
	})
}

// RecordKind enumerates the record kinds HighID can report on.
type RecordKind int

const (
	KindNode RecordKind = iota
	KindRelationship
	KindRelationshipGroup
	KindProperty
	KindDynamic
)
