package changebuf

// Loader supplies the load-on-demand behavior for one record kind: how
// to build a fresh unused record for a newly allocated id, how to fetch
// an existing one from the store, how to materialize its lazy subfields,
// and how to clone it for a BEFORE snapshot.
//
// Clone is only ever invoked for kinds configured with trackBefore=true
// in New; RecordChanges never calls it otherwise, so kinds that don't
// track before-state (relationship, relationship group, the neostore
// singleton) can implement Clone as a panic(ErrCloneUnsupported) without
// ever tripping it.
type Loader[K comparable, R any] interface {
	NewUnused(key K, additionalData any) R
	Load(key K, additionalData any) (R, error)
	EnsureHeavy(r R) error
	Clone(r R) R
}

// RecordChanges is the per-entity-kind staging map: id -> Change,
// loaded lazily, iterated in insertion order.
type RecordChanges[K comparable, R any] struct {
	loader      Loader[K, R]
	trackBefore bool
	changes     map[K]*Change[K, R]
	order       []K
}

// New builds an empty change buffer for one record kind. trackBefore
// should be true for node, property, and token/schema kinds, and false
// for relationship, relationship group, and the neostore singleton.
func New[K comparable, R any](loader Loader[K, R], trackBefore bool) *RecordChanges[K, R] {
	return &RecordChanges[K, R]{
		loader:      loader,
		trackBefore: trackBefore,
		changes:     make(map[K]*Change[K, R]),
	}
}

// Create stages a brand-new record under key, built via the loader's
// NewUnused. Calling Create again for a key that already has a staged
// change replaces it; callers are expected to only do this for ids they
// just allocated.
func (rc *RecordChanges[K, R]) Create(key K, additionalData any) *Change[K, R] {
	r := rc.loader.NewUnused(key, additionalData)
	c := &Change[K, R]{
		key:            key,
		after:          r,
		created:        true,
		mode:           ModeCreate,
		modeSet:        true,
		additionalData: additionalData,
		owner:          rc,
	}
	rc.stage(key, c)
	return c
}

// GetOrLoad returns the staged change for key, loading it from the
// store via the loader on first access.
func (rc *RecordChanges[K, R]) GetOrLoad(key K, additionalData any) (*Change[K, R], error) {
	if c, ok := rc.changes[key]; ok {
		return c, nil
	}
	r, err := rc.loader.Load(key, additionalData)
	if err != nil {
		return nil, err
	}
	c := &Change[K, R]{
		key:            key,
		after:          r,
		additionalData: additionalData,
		owner:          rc,
	}
	rc.stage(key, c)
	return c, nil
}

// GetIfLoaded returns the already-staged change for key without
// touching the store, and whether one exists.
func (rc *RecordChanges[K, R]) GetIfLoaded(key K) (*Change[K, R], bool) {
	c, ok := rc.changes[key]
	return c, ok
}

// Changes returns every staged change, in the order keys were first
// staged. Prepare relies on this order being stable.
func (rc *RecordChanges[K, R]) Changes() []*Change[K, R] {
	out := make([]*Change[K, R], 0, len(rc.order))
	for _, k := range rc.order {
		out = append(out, rc.changes[k])
	}
	return out
}

// ChangeSize reports how many records are currently staged.
func (rc *RecordChanges[K, R]) ChangeSize() int {
	return len(rc.order)
}

// Clear discards every staged change (called after commit or rollback).
func (rc *RecordChanges[K, R]) Clear() {
	rc.changes = make(map[K]*Change[K, R])
	rc.order = nil
}

func (rc *RecordChanges[K, R]) stage(key K, c *Change[K, R]) {
	if _, exists := rc.changes[key]; !exists {
		rc.order = append(rc.order, key)
	}
	rc.changes[key] = c
}
