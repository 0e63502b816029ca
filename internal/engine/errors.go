package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is a failure of the engine itself rather than of the SQL
// it was given. SQL problems surface as *sqlerr.Error.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// CompilationID identifies the affected compilation, when one was
	// assigned.
	CompilationID string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNoCatalog indicates Prepare ran before a catalog was set.
	ErrCodeNoCatalog RuntimeErrorCode = "NO_CATALOG"

	// ErrCodeInvalidQuery indicates the compiler produced a structurally
	// invalid query.
	ErrCodeInvalidQuery RuntimeErrorCode = "INVALID_QUERY"

	// ErrCodeRender indicates the query could not be serialized.
	ErrCodeRender RuntimeErrorCode = "RENDER_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.CompilationID != "" {
		return fmt.Sprintf("%s: %s (compilation=%s)", e.Code, e.Message, e.CompilationID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// RuntimeCodeOf returns the code of err, or "" when err is not a
// *RuntimeError. Uses errors.As to handle wrapped errors.
func RuntimeCodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func newNoCatalogError() *RuntimeError {
	return &RuntimeError{Code: ErrCodeNoCatalog, Message: "no catalog loaded"}
}

func newInvalidQueryError(id string, problems []string) *RuntimeError {
	details := make(map[string]string, len(problems))
	for i, p := range problems {
		details[fmt.Sprintf("problem_%d", i+1)] = p
	}
	return &RuntimeError{
		Code:          ErrCodeInvalidQuery,
		Message:       fmt.Sprintf("compiled query failed validation with %d problem(s)", len(problems)),
		CompilationID: id,
		Details:       details,
	}
}

func newRenderError(id string, err error) *RuntimeError {
	return &RuntimeError{
		Code:          ErrCodeRender,
		Message:       err.Error(),
		CompilationID: id,
	}
}
