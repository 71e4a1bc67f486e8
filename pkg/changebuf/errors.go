package changebuf

import "errors"

// ErrCloneUnsupported is raised (as a panic, signaling a programming
// error rather than a recoverable condition) when code attempts to
// clone a BEFORE snapshot for a record kind that was configured without
// before-state tracking: relationship, relationship group, and the
// neostore singleton.
var ErrCloneUnsupported = errors.New("changebuf: this record kind does not track before-state")

// ErrNotLoaded reports that nothing is staged for a given key. No
// function in this package returns it; GetIfLoaded reports a miss
// through its bool result instead.
var ErrNotLoaded = errors.New("changebuf: no change staged for key")
