// Package poller watches the Instagram inbox for new reel shares and
// feeds them to the processing queue. It also sweeps the pending-inbox
// so that first-time senders are accepted automatically.
package poller
