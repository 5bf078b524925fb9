// Package api exposes a small local HTTP surface for observing the
// daemon: pipeline counters, store totals, and per-user history. It
// binds to loopback by default and carries no authentication.
package api
