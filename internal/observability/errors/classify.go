// Package errors provides error classification helpers for log tags.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"net/url"
	"reflect"
	"strings"
)

// Classify returns a normalized error type name suitable for tagging logs.
// Transport errors get stable names so log queries don't depend on Go
// type paths; everything else falls back to the innermost concrete type
// converted to snake_case-ish.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var urlErr *url.Error
	if goerrors.As(err, &urlErr) {
		return "network"
	}

	// Unwrap to the innermost error for better signal.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
