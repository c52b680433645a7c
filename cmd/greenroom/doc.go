// Command greenroom is the CLI entry point for the submission
// ingestion service: it runs the intake server, processes submission
// documents from files, and provides admin views over the content
// store.
package main
