/*
Package locks implements the lock-service contract pkg/txn consumes:
acquireNodeLock(id, mode) and a per-relationship mutex primitive, plus a
scoped lock group that releases every lock it acquired on exit, success
or failure.

The in-memory implementation here stands in for a real cluster lock
manager, which is out of scope; it exists so pkg/txn and pkg/chain have
something concrete to acquire during tests and the cmd/graphstore-bench
exerciser.
*/
package locks
