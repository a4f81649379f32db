// Package services defines shared utilities consumed by the resolution
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, pair keys, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper that separate run-fatal
//     failures (storage, configuration) from failures contained to one pair.
//
// The llm and openai subpackages hold the classifier backends.
package services
