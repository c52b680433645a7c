// Package notifications delivers ingest and review events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set.
// Callers depend only on the Service interface, so alternative
// transports can be swapped in without touching pipeline code.
package notifications
