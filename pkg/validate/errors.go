package validate

import "fmt"

// InvalidRecordError reports a record that violates its own shape
// invariants.
type InvalidRecordError struct {
	Kind   string
	ID     int64
	Detail string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("validate: invalid %s record %d: %s", e.Kind, e.ID, e.Detail)
}
