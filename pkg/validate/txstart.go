package validate

// ConstraintChecker reports whether a schema constraint created after
// startTxID could have been violated by a transaction that began with
// that last-committed-tx knowledge. pkg/txn implements this over the
// schema rule store; a deployment carrying no uniqueness constraints at
// all can use NoConstraints.
type ConstraintChecker interface {
	ViolatesStartKnowledge(startTxID int64) (bool, error)
}

// NoConstraints is a ConstraintChecker for stores that never enforce
// uniqueness constraints: start-knowledge validation always passes.
type NoConstraints struct{}

func (NoConstraints) ViolatesStartKnowledge(int64) (bool, error) { return false, nil }

// ValidateTransactionStartKnowledge checks that no schema constraint
// created after this transaction started was violated by data this
// transaction wrote.
func ValidateTransactionStartKnowledge(startTxID int64, checker ConstraintChecker) error {
	violated, err := checker.ViolatesStartKnowledge(startTxID)
	if err != nil {
		return err
	}
	if violated {
		return &InvalidRecordError{Kind: "transaction", ID: startTxID, Detail: "schema constraint created after transaction start was violated"}
	}
	return nil
}
