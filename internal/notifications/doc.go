// Package notifications delivers operational push notifications through
// ntfy. When no topic is configured every call is a no-op, so callers
// never need to guard their notification sites.
package notifications
