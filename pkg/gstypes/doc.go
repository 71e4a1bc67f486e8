/*
Package gstypes defines the fixed-shape record types that back the graph
store: nodes, relationships, relationship groups, properties (with their
blocks), dynamic records, tokens, schema rules, and the whole-store
sentinel record.

Every record carries InUse, Created, and an ID, plus whatever linkage
fields its chain role requires. Records are plain value-ish structs handed
around by pointer so that the change buffer (pkg/changebuf) can mutate a
loaded copy in place; nothing in this package talks to a store or a
transaction.
*/
package gstypes
