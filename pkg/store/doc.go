/*
Package store is the on-disk record store the write-transaction core
reads from and writes to at commit time: for each record kind, a
get/put/next-id/free-id contract, plus dynamic-record allocation and
heavy-loading for property values.

One bbolt bucket per record kind, values JSON-encoded, a single
*bbolt.DB underneath. Graph records need id allocation and reclamation
(bbolt's per-bucket NextSequence plus a small per-kind free-id bucket),
and property/dynamic records need a heavy-load step that resolves
spilled values before a mutator touches them.
*/
package store
