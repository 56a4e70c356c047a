package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotFound = errors.New("document not found")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned before any remote call is made.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() error { return err.Err }

// FieldErrors maps field names to their messages.
func (err *ValidationError) FieldErrors() map[string]string {
	flds := make(map[string]string, len(err.Fields))
	for _, fErr := range err.Fields {
		flds[fErr.Field] = fErr.Error
	}
	return flds
}

// RemoteWriteError wraps a failed create, update or delete call on the RemoteStore.
type RemoteWriteError struct {
	Op   string
	Kind Kind
	Err  error
}

func NewRemoteWriteError(op string, kind Kind, err error) error {
	return &RemoteWriteError{Op: op, Kind: kind, Err: errors.WithStack(err)}
}

func (err *RemoteWriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", err.Op, err.Kind, err.Err)
}

func (err *RemoteWriteError) Unwrap() error { return err.Err }

// RemoteSubscriptionError is reported when a live feed fails.
type RemoteSubscriptionError struct {
	Kind Kind
	Err  error
}

func NewRemoteSubscriptionError(kind Kind, err error) error {
	return &RemoteSubscriptionError{Kind: kind, Err: errors.WithStack(err)}
}

func (err *RemoteSubscriptionError) Error() string {
	return fmt.Sprintf("%s feed: %v", err.Kind, err.Err)
}

func (err *RemoteSubscriptionError) Unwrap() error { return err.Err }

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func IsRemoteWriteError(err error) bool {
	var wErr *RemoteWriteError
	return errors.As(err, &wErr)
}
