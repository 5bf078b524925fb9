// Package instagram implements the source.Client contract against the
// Instagram private web API.
//
// The client authenticates with a pre-established session token; luffe does
// not manage the session lifecycle beyond verifying the token at startup.
// Transport failures are tagged as transient source errors so the poller's
// next cycle retries them; 401/403 responses are tagged as auth errors and
// abort startup.
package instagram
