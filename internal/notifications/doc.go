// Package notifications delivers run lifecycle events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Run and error categories can be toggled independently so a topic
// can carry only failures.
//
// Extend this package if you need alternative transports; the runner and
// daemon depend only on the Service interface.
package notifications
