// Package candidates proposes reference pairs for noisy pairs.
//
// The Selector pre-filters reference makes by make similarity, scores the
// surviving reference pairs, drops everything under the candidate floor, and
// rejects candidates whose embedded numerals diverge from the noisy model.
// Only the top survivor proceeds; ties go to the lexically smaller reference
// key so selection is deterministic. When nothing survives, the Selection
// carries the fast-path Decision and no validator or classifier work is
// needed.
//
// Optional refinements are driven by Policy: two-pass make-then-model
// scoring, a shared-category requirement, and priority categories that
// restrict which noisy pairs are worth resolving at all.
package candidates
