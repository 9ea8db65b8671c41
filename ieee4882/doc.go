// Package ieee4882 owns the IEEE-488.2 arbitrary block wire format.
//
// Ownership boundary:
// - definite-length block encode/decode primitives
// - streaming block reads off a byte-oriented transport
// - block stamping (UTC timestamp + payload checksum)
package ieee4882
