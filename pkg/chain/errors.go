package chain

import "fmt"

// EntityDeletedError is raised when an operation is attempted against a
// node or relationship that is not inUse.
type EntityDeletedError struct {
	Kind string
	ID   int64
}

func (e *EntityDeletedError) Error() string {
	return fmt.Sprintf("chain: %s %d is not in use", e.Kind, e.ID)
}

// CorruptChainError signals a chain invariant violated mid-surgery,
// e.g. a neighbor record that doesn't reference the id it's supposed
// to. This should never happen against a store that only this package
// ever mutates; it exists to fail loudly instead of corrupting further.
type CorruptChainError struct {
	Detail string
}

func (e *CorruptChainError) Error() string {
	return "chain: invariant violation: " + e.Detail
}
