// Package notifications delivers run events to ntfy.
//
// The topic comes from the [notifications] section of config.toml; with no
// topic configured NewService returns a no-op implementation. Delivery
// failures are returned to the caller, which logs them. A failed
// notification never fails a run.
package notifications
