package domain

import "errors"

var (
	ErrNotPDF         = errors.New("document is not a pdf")
	ErrFileTooLarge   = errors.New("document exceeds size limit")
	ErrNoSession      = errors.New("no uploaded document")
	ErrEmptySelection = errors.New("no columns selected")

	// ErrSuperseded is returned when a response arrives after a newer
	// operation or a reset and was therefore discarded.
	ErrSuperseded = errors.New("operation superseded")
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
)

// WorkflowError carries the message shown to the user. Err holds the cause
// and is meant for logs only.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	return e.Message
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func ValidationError(message string, err error) *WorkflowError {
	return &WorkflowError{Kind: KindValidation, Message: message, Err: err}
}

func TransportError(message string, err error) *WorkflowError {
	return &WorkflowError{Kind: KindTransport, Message: message, Err: err}
}

func IsValidation(err error) bool {
	var werr *WorkflowError
	return errors.As(err, &werr) && werr.Kind == KindValidation
}

func IsTransport(err error) bool {
	var werr *WorkflowError
	return errors.As(err, &werr) && werr.Kind == KindTransport
}
