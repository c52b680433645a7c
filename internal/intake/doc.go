// Package intake exposes the HTTP surface of the service: submission
// delivery from the form provider, speaker confirmations, and a small
// read-only admin API over the content store.
//
// The server runs the ingest pipeline synchronously within the request
// so the form provider's delivery receipt reflects the real outcome. A
// flock lock file keeps a single instance per data directory.
package intake
