// Package journal is a segmented append-only command journal. Every
// accepted engine command (place, cancel, modify) is framed with a
// CRC and written before it mutates the book, so the book can be
// rebuilt deterministically by replaying segments in order.
//
// Frame layout: [type:1][seq:8][time:8][len:4][payload][crc:4],
// big-endian, CRC32-IEEE over header+payload.
package journal
