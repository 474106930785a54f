// Package projection derives user progress state from the completion ledger.
//
// Every function here is pure and set-based: timestamps and event ordering
// never influence the result, so replaying a user's ledger always produces
// the same snapshot regardless of clock skew or request interleaving. This
// package is the single authority for unlock state; consumers read snapshots
// and never re-derive unlock logic themselves.
package projection
