package gateway

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the two conditions callers branch on. Both are
// recoverable for reads (cached fallback) and trigger rollback for writes.
var (
	// ErrUnauthorized - session invalid (401/403). Propagated to force
	// re-authentication, never retried.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnreachable - no network, timeout or connection failure.
	ErrUnreachable = errors.New("backend unreachable")
)

// ServerError - a 5xx response. Recoverable for reads via cached fallback;
// writes roll back and offer a retry.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.Status)
}

// ValidationError - a 4xx response carrying field-level detail. Surfaced
// verbatim to the composer UI, never retried automatically.
type ValidationError struct {
	Status int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed: status %d", e.Status)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UnrecognizedShapeError - none of the known field names matched a payload
// the tolerant decoder was asked to read.
type UnrecognizedShapeError struct {
	Keys []string
}

func (e *UnrecognizedShapeError) Error() string {
	return fmt.Sprintf("unrecognized payload shape, got keys %v", e.Keys)
}
