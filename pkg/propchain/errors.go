package propchain

import "fmt"

// UnknownPropertyError is returned by ChangeProperty and RemoveProperty
// when the primitive's chain carries no block for the given key.
type UnknownPropertyError struct {
	KeyID int32
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("propchain: no property block for key %d", e.KeyID)
}

// ChainCorruptError signals a property-chain invariant violated during
// surgery or by AssertPropertyChain.
type ChainCorruptError struct {
	Detail string
}

func (e *ChainCorruptError) Error() string {
	return "propchain: invariant violation: " + e.Detail
}
