package errx

import "sync"

// ErrorCode represents a registered error code
type ErrorCode struct {
	Code       string
	HTTPStatus int
	Message    string
}

// Registry manages the error codes of a module. Codes are registered once at
// init time and used verbatim on the wire, so no prefixing is applied.
type Registry struct {
	codes map[string]*ErrorCode
	mu    sync.RWMutex
}

// NewRegistry creates a new error registry
func NewRegistry() *Registry {
	return &Registry{
		codes: make(map[string]*ErrorCode),
	}
}

// Register registers a new error code
func (r *Registry) Register(code string, httpStatus int, message string) *ErrorCode {
	r.mu.Lock()
	defer r.mu.Unlock()

	errorCode := &ErrorCode{
		Code:       code,
		HTTPStatus: httpStatus,
		Message:    message,
	}
	r.codes[code] = errorCode
	return errorCode
}

// New creates a new error from a registered code
func (r *Registry) New(code *ErrorCode) *Error {
	return &Error{
		Code:       code.Code,
		Message:    code.Message,
		HTTPStatus: code.HTTPStatus,
	}
}

// NewWithCause creates a new error from a registered code wrapping a cause
func (r *Registry) NewWithCause(code *ErrorCode, cause error) *Error {
	return &Error{
		Code:       code.Code,
		Message:    code.Message,
		HTTPStatus: code.HTTPStatus,
		Err:        cause,
	}
}

// Get retrieves a registered error code
func (r *Registry) Get(code string) (*ErrorCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	errorCode, exists := r.codes[code]
	return errorCode, exists
}
