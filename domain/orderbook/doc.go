// Package orderbook implements a single-instrument limit order book
// with price-then-time priority matching. It maintains two red-black
// trees of price levels (bid and ask sides) plus an order-id index,
// and supports limit, market, fill-and-kill, fill-or-kill and
// good-for-day admission policies with partial fills, cancellation
// and modification.
//
// The book is synchronous and single-writer. It performs no I/O and
// holds no locks; an embedding layer (see package service) must
// linearize all calls against one book instance.
package orderbook
