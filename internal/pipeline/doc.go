// Package pipeline runs one regularization pass over the dataset.
//
// A run loads the reference and evaluation snapshots, derives the noisy set
// (evaluation pairs absent from the reference), and sends every noisy pair
// through the candidate selector. Fast-path pairs (no candidate, all
// candidates vetoed, filtered by category) are decided inline. The rest
// become tasks on a bounded errgroup pool; each task opens its own catalog
// and dataset handles and builds its own classifier session, runs the
// validators, consults the classifier only when arbitration needs it, and
// always yields a Decision. Panics and per-task timeouts resolve to a
// preserve decision on the failed path.
//
// Decisions are sorted by make then model before they are returned, so the
// output never depends on completion order.
package pipeline
