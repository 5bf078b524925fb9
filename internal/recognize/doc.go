// Package recognize submits extracted audio to the AudD fingerprinting
// API and reports either an identified song, an explicit no-match, or an
// error. Callers must treat no-match as a distinct terminal outcome
// rather than a failure.
package recognize
