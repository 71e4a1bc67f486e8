/*
Package validate implements the integrity checks a transaction runs
during prepare, before handing its commands to the log: node-record
label-field shape, schema-rule structural well-formedness, and the
transaction-start-knowledge check that no schema constraint created
after this transaction began was violated.
*/
package validate
