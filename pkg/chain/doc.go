/*
Package chain implements the pure record-surgery operators that keep
the three chain families consistent: the per-node relationship chain,
the per-dense-node relationship-group chain, and (in the sibling
package propchain) the per-primitive property chain.

Every operator here only mutates records already staged by a change
buffer and handed in through Context; nothing in this package talks to
a store or a lock service directly; pkg/mutation wires both in.
*/
package chain
