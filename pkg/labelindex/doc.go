/*
Package labelindex extracts label-scan index updates from committed
node changes and defines the scoped-writer contract commit writes them
through.

The label-scan index's backing search structure is out of scope; only
the newWriter/write/commit-on-close seam is implemented here, alongside
an in-memory Writer used by tests and the bench CLI.
*/
package labelindex
