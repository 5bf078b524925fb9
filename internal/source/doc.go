// Package source defines the contract between luffe and the inbound message
// source, and the event types that flow from the poller to the processing
// workers.
//
// The Client interface is implemented by the instagram subpackage for
// production and by fakes in tests. Everything the pipeline knows about the
// outside message stream goes through it: listing direct messages, sweeping
// and accepting pending requests, downloading reel media, and sending replies.
package source
