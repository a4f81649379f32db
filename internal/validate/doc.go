// Package validate produces the deterministic verdicts that sit beside the
// classifier: the reference-authority check against the make/model catalog
// and the temporal check on registration periods.
//
// Validators never panic or return errors. Lookup failures become a
// degraded NEUTRAL verdict with zero confidence so arbitration falls through
// to the next rule, and the cause is kept in the rationale and logged with
// WarnWithContext.
package validate
