/*
Package command holds the durable command stream prepare materializes
from a transaction's staged changes and commit later executes, either
fresh or replayed from the log during recovery.

Each record kind gets its own concrete command type rather than one
command struct carrying an op-code string: the kinds prepare emits
differ enough in shape (property and schema-rule commands carry before
state for value-freeing at commit, token commands don't) that a tagged
union of structs reads closer to what it does than a generic blob would.
*/
package command
