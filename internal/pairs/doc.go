// Package pairs models make/model identifier pairs and the snapshot sets the
// resolver works from.
//
// A Pair's identity is its Key: make and model upper-cased, trimmed, and
// whitespace-collapsed. Year ranges, categories, and record counts describe
// a pair but never participate in identity. Sets are built once and never
// mutated: NewReferenceSet indexes the trusted period by make, and Subtract
// yields the noisy evaluation pairs that have no exact reference match.
package pairs
