// Package processor consumes reel events from the work queue and runs
// each through the identification pipeline: cache lookup, download,
// audio extraction, fingerprinting, persistence, and the reply back to
// the sender. Recognition results are cached by reel media ID so a reel
// shared twice is only fingerprinted once.
package processor
