package exceptions

import (
	"errors"
	"fmt"
	"mobileforms-service/internal/pkg/constvars"
	"runtime"
	"strings"
)

// Error kinds shared by the post-process engine and the error resolution workflow.
// Match them with errors.Is; every CustomError built for one of them unwraps to it.
var (
	ErrMalformedDocument   = errors.New("malformed document")
	ErrFieldNotFound       = errors.New("field not found")
	ErrStorageFailure      = errors.New("storage failure")
	ErrCollaboratorFailure = errors.New("collaborator failure")
	ErrInvalidAction       = errors.New("invalid action")

	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPrecondition = errors.New("precondition failed")
)

type CustomError struct {
	StatusCode    int        `json:"status_code"`
	Success       bool       `json:"success"`
	ClientMessage string     `json:"message"`
	DevMessage    string     `json:"dev_message,omitempty"`
	Locations     []Location `json:"locations,omitempty"`
	Kind          error      `json:"-"`
	Err           error      `json:"-"`
}

type Location struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	FunctionName string `json:"function_name"`
}

func (e *CustomError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.DevMessage)
	if len(e.Locations) > 0 {
		last := e.Locations[len(e.Locations)-1]
		fmt.Fprintf(&sb, " (%s:%d %s)", last.File, last.Line, last.FunctionName)
	}
	return sb.String()
}

func (e *CustomError) Unwrap() []error {
	unwrapped := make([]error, 0, 2)
	if e.Kind != nil {
		unwrapped = append(unwrapped, e.Kind)
	}
	if e.Err != nil {
		unwrapped = append(unwrapped, e.Err)
	}
	return unwrapped
}

// BuildNewCustomError wraps err with client and developer messages. When err is already a
// CustomError its locations and kind are carried over so the trail survives re-wrapping.
func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	return build(nil, err, statusCode, clientMessage, devMessage)
}

// BuildNewKindError is BuildNewCustomError for one of the error kinds above.
func BuildNewKindError(kind, err error, statusCode int, clientMessage, devMessage string) *CustomError {
	return build(kind, err, statusCode, clientMessage, devMessage)
}

func build(kind, err error, statusCode int, clientMessage, devMessage string) *CustomError {
	customErr := &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Kind:          kind,
		Err:           err,
	}

	var inner *CustomError
	if errors.As(err, &inner) {
		customErr.Locations = append(customErr.Locations, inner.Locations...)
		if customErr.Kind == nil {
			customErr.Kind = inner.Kind
		}
		customErr.DevMessage = fmt.Sprintf("%s: %s", devMessage, inner.DevMessage)
	} else if err != nil {
		customErr.DevMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}

	customErr.Locations = append(customErr.Locations, getLocation(3))
	return customErr
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ResponseUnknown,
			Line:         0,
			FunctionName: constvars.ResponseUnknown,
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
