// Package sqlite implements the progression persistence contracts.
//
// The completions table is the authoritative append-only ledger; its
// (user_id, chapter_number) primary key is what guarantees exactly one
// completion event per pair even under concurrent writers. The
// progress_cache table is a denormalized read optimization and is always
// re-derivable from completions.
package sqlite
