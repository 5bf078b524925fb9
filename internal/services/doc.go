// Package services defines shared utilities consumed by the poller, the
// processing workers, and the external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp inbound event IDs, reel IDs, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (transient source hiccup, transient service failure, resource failure,
//     auth failure) so loop boundaries can decide what to do with them.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform.
package services
