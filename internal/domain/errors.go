package domain

import "fmt"

// ErrorKind classifies pipeline errors by the layer that produced them.
type ErrorKind string

const (
	KindConfig     ErrorKind = "config"
	KindValidation ErrorKind = "validation"
	KindConversion ErrorKind = "conversion"
	KindAPI        ErrorKind = "api"
	KindIO         ErrorKind = "io"
)

// Error is a classified pipeline error with an optional wrapped cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ConfigError reports a configuration problem (missing credential, bad path).
func ConfigError(msg string, cause error) *Error {
	return &Error{Kind: KindConfig, Message: msg, Cause: cause}
}

// ValidationError reports invalid input (missing file, wrong extension).
func ValidationError(msg string, cause error) *Error {
	return &Error{Kind: KindValidation, Message: msg, Cause: cause}
}

// ConversionError reports a PDF rendering failure.
func ConversionError(msg string, cause error) *Error {
	return &Error{Kind: KindConversion, Message: msg, Cause: cause}
}

// APIError reports an inference gateway failure.
func APIError(msg string, cause error) *Error {
	return &Error{Kind: KindAPI, Message: msg, Cause: cause}
}

// IOError reports a filesystem failure.
func IOError(msg string, cause error) *Error {
	return &Error{Kind: KindIO, Message: msg, Cause: cause}
}
