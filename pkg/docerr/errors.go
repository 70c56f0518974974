// Package docerr defines the error taxonomy shared by the document editing
// packages.
//
// Every error returned by quipdoc wraps one of the sentinel values below, so
// callers can branch with errors.Is regardless of which typed wrapper carries
// the detail:
//
//	if errors.Is(err, docerr.ErrIndexOutOfRange) { ... }
//
//	var rejected *docerr.RemoteRejectedError
//	if errors.As(err, &rejected) {
//	    log.Printf("remote said %d: %s", rejected.Code, rejected.Message)
//	}
package docerr

import (
	"errors"
	"fmt"
)

// Validation failures. These are detected before any remote call is issued.
var (
	// ErrInvalidDimension is returned when a table is requested with a row or
	// column count that is not positive.
	ErrInvalidDimension = errors.New("invalid table dimension")

	// ErrRowWidthMismatch is returned when a row's cell count differs from
	// the table's column count.
	ErrRowWidthMismatch = errors.New("row width does not match column count")

	// ErrIndexOutOfRange is returned for a row or column index outside the grid.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrLastRowProtected is returned when removing the only remaining row.
	ErrLastRowProtected = errors.New("table must retain at least one row")

	// ErrInvalidLocationCombination is returned when an anchor is supplied to
	// APPEND/PREPEND or omitted for a section-anchored location.
	ErrInvalidLocationCombination = errors.New("invalid location and anchor combination")

	// ErrConflictingAnchor is returned when a comment names both a section and
	// an existing annotation.
	ErrConflictingAnchor = errors.New("section id and annotation id are mutually exclusive")
)

// Lookup failures.
var (
	ErrSectionNotFound = errors.New("section not found")
	ErrTableNotFound   = errors.New("table not found")
	ErrNotFound        = errors.New("document not found")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Remote failures.
var (
	// ErrRemoteRejected is matched by every RemoteRejectedError.
	ErrRemoteRejected = errors.New("remote edit rejected")

	// ErrTransport is matched by every TransportError.
	ErrTransport = errors.New("transport failure")
)

// ValidationError describes a caller mistake caught before any network effect.
type ValidationError struct {
	Op    string // Operation being validated, e.g. "update cell"
	Field string // Offending argument, e.g. "row"
	Value any    // Offending value
	Err   error  // One of the validation sentinels
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s=%v: %v", e.Op, e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid builds a ValidationError.
func Invalid(op, field string, value any, err error) error {
	return &ValidationError{Op: op, Field: field, Value: value, Err: err}
}

// NotFoundError names the identifier that could not be resolved.
type NotFoundError struct {
	Kind string // "section", "table", "document"
	ID   string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// SectionNotFound returns a NotFoundError for a section anchor.
func SectionNotFound(id string) error {
	return &NotFoundError{Kind: "section", ID: id, Err: ErrSectionNotFound}
}

// TableNotFound returns a NotFoundError for a table id.
func TableNotFound(id string) error {
	return &NotFoundError{Kind: "table", ID: id, Err: ErrTableNotFound}
}

// DocumentNotFound returns a NotFoundError for a document id.
func DocumentNotFound(id string) error {
	return &NotFoundError{Kind: "document", ID: id, Err: ErrNotFound}
}

// RemoteRejectedError is returned when the service declined an edit. The
// local model is left exactly as it was before the call.
type RemoteRejectedError struct {
	Op         string
	StatusCode int    // HTTP status, 0 when not applicable
	Code       int    // Upstream error code
	Message    string // Upstream error description
}

func (e *RemoteRejectedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: remote rejected edit (status %d, code %d): %s", e.Op, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: remote rejected edit (code %d): %s", e.Op, e.Code, e.Message)
}

func (e *RemoteRejectedError) Is(target error) bool {
	return target == ErrRemoteRejected
}

// TransportError wraps a failure of the underlying transport (network,
// timeout, cancellation). The core never retries these.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Remote normalises an error returned by a collaborator. Errors that already
// belong to the taxonomy are returned unchanged; anything else is treated as
// a transport failure.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		validation *ValidationError
		notFound   *NotFoundError
	)
	switch {
	case errors.Is(err, ErrRemoteRejected),
		errors.Is(err, ErrTransport),
		errors.Is(err, ErrUnauthorized),
		errors.As(err, &validation),
		errors.As(err, &notFound):
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// IsValidation reports whether err was raised by local validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
