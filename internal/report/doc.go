// Package report renders run results and writes them to disk.
//
// Reports carry the run id, a generation timestamp, the run statistics and
// the sorted decisions with every verdict that led to them. JSON is the
// canonical format; the table and Markdown renderings are for review.
// Given the same decisions, run id and timestamp the output is
// byte-identical.
//
// Files are written atomically (temp file then rename) while holding an
// exclusive lock on the report directory, so concurrent runs sharing a
// directory never interleave. A failed write is fatal for the run.
package report
