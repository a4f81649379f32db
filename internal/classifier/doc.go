// Package classifier asks a chat model whether a noisy make/model pair is a
// spelling or truncation variant of its candidate, or a distinct model.
//
// Every Classify call is a single-turn exchange with a freshly built
// Completer, so no conversation state leaks between pairs. Calls pass
// through Limits, which caps in-flight requests with a weighted semaphore
// and optionally spaces them with a token bucket.
//
// The response parser is defensive: a JSON object is preferred, then label
// keywords in free text, then any confidence value, with 0.5 as the last
// resort. A transport or parse failure never escapes Classify; it becomes an
// uncertain verdict with confidence 0.5 and the error as rationale.
package classifier
