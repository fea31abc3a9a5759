// Package snapshot persists a point-in-time image of the book's
// resting orders so the command journal can be truncated behind it.
// Orders are written in level FIFO order and restored verbatim,
// preserving time priority and partial fills.
package snapshot
