package worker

import (
	"errors"
	"fmt"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

// RequestErrorKind tags a boundary error returned to the LSP coordinator,
// per spec.md §7.
type RequestErrorKind int

const (
	ErrCancelled RequestErrorKind = iota
	ErrInvalidRequest
	ErrNotFound
	ErrUnknown
	ErrConnectionInterrupted
)

func (k RequestErrorKind) String() string {
	switch k {
	case ErrCancelled:
		return "cancelled"
	case ErrInvalidRequest:
		return "invalid_request"
	case ErrNotFound:
		return "not_found"
	case ErrConnectionInterrupted:
		return "connection_interrupted"
	default:
		return "unknown"
	}
}

// RequestError is the tagged error every worker operation returns on
// failure, per spec.md §7's error-kind table.
type RequestError struct {
	Kind RequestErrorKind
	Err  error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func newRequestError(kind RequestErrorKind, format string, args ...any) *RequestError {
	return &RequestError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// requestErrorFromClient maps a sourcekitd.Error to the boundary error kind.
// connection_interrupted is the only kind that also drives the state
// machine; that happens at the call site, not here.
func requestErrorFromClient(err error) *RequestError {
	var skErr *sourcekitd.Error
	if !errors.As(err, &skErr) {
		return newRequestError(ErrUnknown, "%v", err)
	}

	switch skErr.Kind {
	case sourcekitd.ErrCancelled:
		return &RequestError{Kind: ErrCancelled, Err: skErr}
	case sourcekitd.ErrConnectionInterrupted:
		return &RequestError{Kind: ErrConnectionInterrupted, Err: skErr}
	default:
		return &RequestError{Kind: ErrUnknown, Err: skErr}
	}
}
