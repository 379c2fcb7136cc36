package llmclient

import "fmt"

// ErrorType classifies an llmclient failure so a caller can react without
// parsing error strings.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeRequest
	ErrorTypeResponse
	ErrorTypeAPI
	ErrorTypeSchema
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeRequest:
		return "RequestError"
	case ErrorTypeResponse:
		return "ResponseError"
	case ErrorTypeAPI:
		return "APIError"
	case ErrorTypeSchema:
		return "SchemaError"
	default:
		return "UnknownError"
	}
}

// Error wraps every provider failure with enough context to classify it.
type Error struct {
	Err     error
	Message string
	Type    ErrorType
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError constructs a classified Error.
func NewError(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}
