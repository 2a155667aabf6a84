package types

import "fmt"

// InvalidInputError reports malformed or out-of-range caller input.
// The operation can be retried with corrected input.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a reference to a boat id that is not in the registry
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("boat %q not found", e.ID)
}

// DuplicateIDError reports an id collision when creating a boat
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("boat %q already exists", e.ID)
}

// PersistenceError reports a failed save or load. The underlying cause is
// available through Unwrap, so callers can match on os errors or on a
// wrapped SchemaError.
type PersistenceError struct {
	Op   string // "save" or "load"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SchemaError reports a structurally invalid persisted document. Load
// surfaces it wrapped inside a PersistenceError, so errors.As matches
// either kind.
type SchemaError struct {
	Detail string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid fleet document: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("invalid fleet document: %s", e.Detail)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
