// Package domain defines the core entities and rules for chapter progression.
//
// The model is centered around a few key concepts:
//
// # Chapter
//
// A Chapter is an atomic unit of content with a fixed position (1-27) in the
// overall sequence. Each chapter belongs to exactly one directional group and
// may be flagged as a gate or a milestone, both of which carry an XP bonus.
//
// # Catalog
//
// The Catalog is the static, ordered list of all chapters. It is fixed at
// deployment and validated for contiguity on construction. All other
// components treat it as read-only reference data.
//
// # CompletionEvent
//
// A CompletionEvent records that a user completed a chapter. Events are
// append-only: created exactly once per (user, chapter) and never mutated or
// deleted. All progress state is derived from them.
//
// # Snapshot
//
// A Snapshot is the fully-derived progress state for one user at a point in
// time: completed set, unlocked set, total XP, level, and the current-chapter
// pointer. Snapshots are recomputed from the ledger, never stored as truth.
package domain
