// Command luffe is the operator CLI for the song identification bot. It
// inspects the daemon's status endpoint, browses user history and the
// reel cache, and manages configuration.
package main
