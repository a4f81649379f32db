// Package catalog looks up make/model pairs in the authoritative vehicle
// catalog.
//
// The catalog is a read-only SQLite database with a single table:
//
//	catalog(make TEXT, model TEXT, category TEXT)
//
// A pair may appear under several categories. Lookups try the model as
// given, then with separators removed ("CX-3" → "CX3"), then with a
// separator inserted at the first letter/digit boundary ("CX3" → "CX-3")
// before reporting the pair as not found.
//
// Cache is an explicit LRU shared between per-task handles. Entries are
// keyed by the configuration fingerprint; changing the fingerprint purges
// the cache.
package catalog
