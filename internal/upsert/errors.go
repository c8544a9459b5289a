package upsert

import (
	"fmt"

	"github.com/ariel-frischer/mergelog/internal/retry"
	"github.com/ariel-frischer/mergelog/internal/store"
)

// SchemaError means the target database is missing a field of a required
// kind. This is a configuration problem, never retried.
type SchemaError struct {
	Kind store.FieldKind
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("target database has no property of kind %q", e.Kind)
}

// Op names the store interaction an OpError wraps.
type Op string

const (
	// OpLookup covers schema reads, date queries, and body fetches.
	OpLookup Op = "lookup"
	// OpCreate covers day-bucket page creation.
	OpCreate Op = "create"
	// OpPersist covers the final re-check-and-append unit.
	OpPersist Op = "persist"
)

// OpError wraps a store failure with the operation that hit it. Its
// retryability follows the underlying store error's classification.
type OpError struct {
	Op  Op
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Retryable reports whether the wrapped failure is transient.
func (e *OpError) Retryable() bool { return retry.IsTransient(e.Err) }
