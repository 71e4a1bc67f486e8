package mutation

import "fmt"

// IllegalStateError reports a caller violating the mutation API's
// contract against a live ChangeSet: mutating a record after it was
// deleted earlier in the same transaction, deleting it twice, or
// deleting a node that still has relationships attached.
type IllegalStateError struct {
	Op     string
	Detail string
}

func (e *IllegalStateError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("mutation: illegal state: %s", e.Detail)
	}
	return fmt.Sprintf("mutation: illegal state in %s: %s", e.Op, e.Detail)
}
