// Package llm provides an OpenRouter-compatible chat client used by the
// semantic classifier.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.CompleteJSON: send system/user prompts, receive the JSON payload.
// Client.HealthCheck: verify the API key and model answer before a run.
// DecodeLLMJSON: tolerant decoding of model output (code fences, prose
// around the object).
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s). Retry-After headers
// are honoured up to the max delay. Context cancellation aborts immediately.
// Errors surfaced after the last attempt are tagged with
// services.ErrExternalTool so callers can degrade instead of failing a run.
package llm
