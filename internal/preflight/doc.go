// Package preflight checks that the data sources and directories a run
// depends on are usable before any pair is resolved.
//
// These checks run in two contexts:
//   - "saaqreg run" calls RunAll before loading the dataset. A failed
//     required check aborts the run before any classifier call is spent.
//   - "saaqreg config validate" prints every result.
//
// The classifier is probed separately through CheckClassifier because the
// run only warns when it is unhealthy.
package preflight
