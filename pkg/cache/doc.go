/*
Package cache defines the invalidation contract commit applies against
the in-process object cache: which nodes and relationships to evict,
which token and schema-rule caches to refresh, and which label updates
to push into whatever keeps labels cached.

The real in-process object cache is out of scope; this
package only carries the seam so pkg/txn has something concrete to call
into, and tests can substitute a Recorder to assert exactly what commit
invalidated.
*/
package cache
