package harness

import (
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/store"
)

// Result is the outcome of one scenario run.
type Result struct {
	// Pass is true when the outcome matched expect_error and every
	// assertion held.
	Pass bool `json:"pass"`

	// SPARQL is the rendered query, empty on failure.
	SPARQL string `json:"sparql,omitempty"`

	// Columns are the result column names.
	Columns []string `json:"columns,omitempty"`

	// ErrorCode is the code of the compilation error, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// ErrorMessage is the compilation error text, if any.
	ErrorMessage string `json:"error_message,omitempty"`

	// Errors lists the failed checks. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Log is the compilation log after the run.
	Log []store.Compilation `json:"-"`

	stats *queryir.Stats
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
