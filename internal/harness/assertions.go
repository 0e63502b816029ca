package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/rdfsql/internal/queryir"
)

// EvaluateAssertions checks every assertion against result and returns
// one message per failure, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertColumns:
		if !slices.Equal(r.Columns, a.Columns) {
			return fmt.Errorf("expected columns %v, got %v", a.Columns, r.Columns)
		}
	case AssertContains:
		if !strings.Contains(r.SPARQL, a.Text) {
			return fmt.Errorf("%q not found in:\n%s", a.Text, r.SPARQL)
		}
	case AssertNotContains:
		if strings.Contains(r.SPARQL, a.Text) {
			return fmt.Errorf("%q unexpectedly found in:\n%s", a.Text, r.SPARQL)
		}
	case AssertStats:
		return assertStats(r.stats, a)
	case AssertRecorded:
		if len(r.Log) != 1 {
			return fmt.Errorf("expected 1 log entry, got %d", len(r.Log))
		}
		if got := string(r.Log[0].Status); got != a.Status {
			return fmt.Errorf("expected status %s, got %s", a.Status, got)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertStats(got *queryir.Stats, a Assertion) error {
	if got == nil {
		return fmt.Errorf("no query to count")
	}
	checks := []struct {
		name string
		want *int
		got  int
	}{
		{"triples", a.Triples, got.Triples},
		{"optionals", a.Optionals, got.Optionals},
		{"filters", a.Filters, got.Filters},
		{"binds", a.Binds, got.Binds},
		{"equates", a.Equates, got.Equates},
	}
	var diffs []string
	for _, c := range checks {
		if c.want != nil && *c.want != c.got {
			diffs = append(diffs, fmt.Sprintf("%s: expected %d, got %d", c.name, *c.want, c.got))
		}
	}
	if len(diffs) > 0 {
		return fmt.Errorf("%s", strings.Join(diffs, "; "))
	}
	return nil
}
