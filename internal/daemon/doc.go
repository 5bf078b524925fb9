// Package daemon ties the poller, worker pool, status API, and store
// together into a single long-running process and enforces
// single-instance execution with a lock file.
package daemon
