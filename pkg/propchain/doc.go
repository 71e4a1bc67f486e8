/*
Package propchain implements the property-chain operators: add, change,
and remove a property on a node, relationship, or the graph singleton,
maintaining the doubly-linked chain of fixed-payload property records
each primitive owns.

Like pkg/chain, this package only performs record surgery against
records handed in through a Context; pkg/mutation wires it to the real
change buffers and dynamic-record allocator.
*/
package propchain
