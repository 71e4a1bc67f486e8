package changebuf

// Mode tags whether a staged change is a brand-new record, a mutation of
// an existing one, or a deletion.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
	ModeDelete
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	case ModeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is the tri-state staged mutation for one record: an optional
// BEFORE snapshot, the live AFTER value callers read and mutate, the
// Mode it will serialize as, and whatever additional data the loader
// needed to load or construct it (e.g. the primitive a property record
// belongs to).
type Change[K comparable, R any] struct {
	key     K
	before  R
	hasBefore bool
	after   R
	created bool
	mode    Mode
	modeSet bool
	additionalData any

	owner *RecordChanges[K, R]
}

// GetKey returns the id this change is staged under.
func (c *Change[K, R]) GetKey() K { return c.key }

// IsCreated reports whether this change originated from Create (as
// opposed to GetOrLoad).
func (c *Change[K, R]) IsCreated() bool { return c.created }

// GetBefore returns the BEFORE snapshot and whether one has been taken.
// It is always (zero, false) for kinds that don't track before-state,
// and for created records (nothing preceded them).
func (c *Change[K, R]) GetBefore() (R, bool) { return c.before, c.hasBefore }

// GetAdditionalData returns the loader-specific context this change was
// created or loaded with.
func (c *Change[K, R]) GetAdditionalData() any { return c.additionalData }

// GetMode returns the change's current serialization mode.
func (c *Change[K, R]) GetMode() Mode { return c.mode }

// ForReadingLinkage returns the current record for read-only inspection
// of its chain-linkage fields. It never promotes the change to a
// mutation: no BEFORE snapshot is taken and the record is not flagged
// dirty.
func (c *Change[K, R]) ForReadingLinkage() R { return c.after }

// ForReadingData returns the current record for read-only inspection of
// its payload fields (e.g. a property record's blocks). Same
// non-promoting contract as ForReadingLinkage.
func (c *Change[K, R]) ForReadingData() R { return c.after }

// ForChangingLinkage returns the record for mutation of its chain-linkage
// fields, promoting the change (taking a BEFORE snapshot on first
// promotion, for kinds that track one).
func (c *Change[K, R]) ForChangingLinkage() R {
	c.promote()
	return c.after
}

// ForChangingData returns the record for mutation of its payload fields,
// with the same promotion contract as ForChangingLinkage.
func (c *Change[K, R]) ForChangingData() R {
	c.promote()
	return c.after
}

// MarkDeleted promotes the change (if not already) and sets its mode to
// ModeDelete.
func (c *Change[K, R]) MarkDeleted() {
	c.promote()
	c.mode = ModeDelete
}

// EnsureHeavy materializes any lazily-loaded subfields of the current
// record (e.g. a property record's dynamic value chains) before a caller
// mutates it.
func (c *Change[K, R]) EnsureHeavy() error {
	return c.owner.loader.EnsureHeavy(c.after)
}

func (c *Change[K, R]) promote() {
	if !c.modeSet {
		if c.created {
			c.mode = ModeCreate
		} else {
			c.mode = ModeUpdate
		}
		c.modeSet = true
	}
	if c.created || !c.owner.trackBefore || c.hasBefore {
		return
	}
	c.before = c.owner.loader.Clone(c.after)
	c.hasBefore = true
}
