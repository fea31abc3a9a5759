// Package service wraps the matching core in a durable write path.
// One OrderService owns one book exclusively: a single mutex
// linearizes every mutating call and every read of book state, so no
// partial state is ever observable mid-operation.
//
// Each accepted command is journaled before it mutates the book,
// lifecycle events go to the durable outbox for broadcast, and trade
// executions go to the best-effort feed producer.
package service
