package wps

import (
	"errors"
	"fmt"

	"github.com/delta10/wpsd/internal/ows"
)

var (
	ErrParse                 = errors.New("malformed document")
	ErrInvalidDescription    = errors.New("invalid description")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrMissingParameter      = errors.New("missing parameter")
	ErrOperationNotSupported = errors.New("operation not supported")
	ErrVersionNegotiation    = errors.New("version negotiation failed")
	ErrUnknownProcess        = errors.New("unknown process")
	ErrUnknownInput          = errors.New("unknown input")
	ErrUnknownOutput         = errors.New("unknown output")
	ErrCardinalityViolation  = errors.New("cardinality violation")
	ErrSchemaMismatch        = errors.New("schema mismatch")
	ErrVariantMismatch       = errors.New("variant mismatch")
	ErrValueNotAllowed       = errors.New("value not allowed")
	ErrFileSizeExceeded      = errors.New("file size exceeded")
	ErrInvalidReference      = errors.New("invalid reference")
	ErrInvalidRawOutput      = errors.New("invalid raw data output")
	ErrInvalidStatusRequest  = errors.New("status requires storeExecuteResponse")
	ErrStatusNotSupported    = errors.New("status not supported")
	ErrStoreNotSupported     = errors.New("store not supported")
	ErrIllegalTransition     = errors.New("illegal status transition")

	errMissingInput = fmt.Errorf("%w: missing mandatory input", ErrCardinalityViolation)
)

// Error wraps one of the sentinel kinds with the offending element.
type Error struct {
	Kind    error
	Locator string
	Msg     string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Locator != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Locator)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, locator, format string, args ...any) error {
	return &Error{Kind: kind, Locator: locator, Msg: fmt.Sprintf(format, args...)}
}

// ExceptionCode maps an error to the OWS exception code reported to clients.
func ExceptionCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrVersionNegotiation):
		return ows.CodeVersionNegotiationFailed
	case errors.Is(err, errMissingInput), errors.Is(err, ErrMissingParameter):
		return ows.CodeMissingParameterValue
	case errors.Is(err, ErrOperationNotSupported):
		return ows.CodeOperationNotSupported
	case errors.Is(err, ErrStoreNotSupported):
		return ows.CodeStorageNotSupported
	case errors.Is(err, ErrFileSizeExceeded):
		return ows.CodeFileSizeExceeded
	case errors.Is(err, ErrParse),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrUnknownProcess),
		errors.Is(err, ErrUnknownInput),
		errors.Is(err, ErrUnknownOutput),
		errors.Is(err, ErrCardinalityViolation),
		errors.Is(err, ErrSchemaMismatch),
		errors.Is(err, ErrVariantMismatch),
		errors.Is(err, ErrValueNotAllowed),
		errors.Is(err, ErrInvalidReference),
		errors.Is(err, ErrInvalidRawOutput),
		errors.Is(err, ErrInvalidStatusRequest),
		errors.Is(err, ErrStatusNotSupported):
		return ows.CodeInvalidParameterValue
	default:
		return ows.CodeNoApplicableCode
	}
}

// ExceptionReportFor builds the report sent back for a rejected request.
func ExceptionReportFor(err error) ows.ExceptionReport {
	var report ows.ExceptionReport
	if errors.As(err, &report) {
		return report
	}
	locator := ""
	var e *Error
	if errors.As(err, &e) {
		locator = e.Locator
	}
	return ows.NewExceptionReport(ExceptionCode(err), locator, err.Error())
}
