package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransientSource marks message-source fetch/send hiccups. The poller
	// retries these implicitly on its next cycle; nothing retries them mid-cycle.
	ErrTransientSource = errors.New("transient source error")
	// ErrTransientService marks recognition/service call failures eligible for
	// the bounded retry policy at the call site.
	ErrTransientService = errors.New("transient service error")
	// ErrResource marks download/extraction failures. The event is abandoned
	// and temp files cleaned up; no automatic retry.
	ErrResource = errors.New("resource error")
	// ErrAuth marks authentication failures with the message source. These
	// propagate out of startup; the loops never begin.
	ErrAuth = errors.New("authentication error")
	// ErrValidation marks bad input that retrying cannot fix.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing or malformed configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransientService
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTransient reports whether an error is one of the transient markers and
// therefore safe to retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientSource) || errors.Is(err, ErrTransientService)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
