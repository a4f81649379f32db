// Package storage opens the SQLite databases the resolver reads from.
//
// Both the registration dataset and the authoritative catalog are consumed
// read-only: handles are opened with mode=ro and query_only so no code path
// can mutate source records. Every worker task opens its own handle, so
// handles are cheap single-connection pools. Reads that hit SQLITE_BUSY are
// retried with a short exponential backoff.
package storage
