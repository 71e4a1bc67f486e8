/*
Package changebuf implements the per-transaction change buffer: a
generic, per-entity-kind staging map from id to a tri-state change
record, with lazy load-on-demand from the store and
clone-on-first-mutation of a BEFORE snapshot for kinds that track one.

Callers read a record via ForReadingLinkage/ForReadingData without
promoting it to a mutation; they call ForChangingLinkage/ForChangingData
to get a record they intend to mutate, which is the point at which the
BEFORE snapshot (if this kind tracks one) gets cloned.
*/
package changebuf
