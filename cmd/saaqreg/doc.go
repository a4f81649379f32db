// Package main hosts the saaqreg CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration, builds the run logger and
// hands off to the pipeline and report packages. Commands stay thin: the
// resolution logic lives in internal packages so it can be tested without
// a terminal.
package main
