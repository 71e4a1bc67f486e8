/*
Package txn implements the transaction lifecycle over a
mutation.ChangeSet: prepare materializes the staged changes into an
ordered command stream and hands it to a command.Sink; commit executes
that stream against the record store in a fixed phase order, acquiring
per-node locks, extracting label-scan updates, submitting property-index
batches, and invalidating the object cache; rollback discards the buffer
and reclaims the ids of anything it created; recovery replays a
previously logged command stream without allocating fresh ids.

A Transaction is single-threaded by contract: one caller thread stages
mutations through its ChangeSet, then calls Prepare and Commit in that
order. Locking is the only serialization point between concurrent
transactions; prepare and commit themselves run synchronously start to
finish.
*/
package txn
