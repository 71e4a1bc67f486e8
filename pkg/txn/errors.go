package txn

import "fmt"

// XAError reports a violation of the prepare/commit/rollback state
// machine: preparing twice, committing without a prior prepare,
// committing or rolling back a transaction already terminated, or
// committing out of the expected tx-id sequence.
type XAError struct {
	Op     string
	Detail string
}

func (e *XAError) Error() string {
	return fmt.Sprintf("txn: %s: %s", e.Op, e.Detail)
}

// UnderlyingStorageError wraps an I/O failure from the record store or
// the label-scan writer surfaced during commit. The caller must treat
// it as fatal for this transaction and the engine must recover from the
// command log on next startup.
type UnderlyingStorageError struct {
	Op  string
	Err error
}

func (e *UnderlyingStorageError) Error() string {
	return fmt.Sprintf("txn: underlying storage failure during %s: %v", e.Op, e.Err)
}

func (e *UnderlyingStorageError) Unwrap() error { return e.Err }
