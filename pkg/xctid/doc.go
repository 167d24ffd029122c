/*
Package xctid implements the per-record version/lock word shared by every
storage family in the engine.

A Tag is a single 64-bit word, never touched except through atomic load,
store, and compare-and-swap. It packs four fields:

	┌─────────────── 64-bit Tag ───────────────┐
	│ epoch:32 │ ordinal:24 │ status:5 │ lock:3 │
	└────────────────────────────────────────────┘

The lock field is CAS-mutated independently of the rest of the word; every
other field is published in a single release-store once the caller holds
the lock. Readers load the whole word with acquire semantics before ever
touching the record's payload.
*/
package xctid
