/*
Package mutation is the public graph mutation surface: node and
relationship CRUD, property add/change/remove on nodes, relationships,
and the graph singleton, label add/remove, schema rule create/drop, and
token get-or-create.

Everything here stages into a ChangeSet — one changebuf.RecordChanges
buffer per record kind, backed by pkg/store loaders — and delegates the
actual record surgery to pkg/chain and pkg/propchain through two thin
adapters (chainAdapter, propAdapter) that implement those packages'
Context interfaces over the buffers. Nothing in this package writes to
the store directly except dynamic-record id allocation, which happens
eagerly at mutation time: dynamic records aren't part of the seven-kind
command taxonomy pkg/txn materializes at prepare, so their chains are
allocated here (ids reserved through pkg/store's AllocateFrom, which
does not write the records) and held on the ChangeSet for pkg/txn to
either write (commit) or return the ids of (rollback).
*/
package mutation
