package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rdfsql/internal/sqlerr"
)

// Scenario is one statement to compile and the checks to run on the
// outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the path of a CUE or YAML catalog definition, resolved
	// against the scenario file's directory. Empty selects the demo
	// catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// DefaultSchema is tried first for unqualified table names.
	DefaultSchema string `yaml:"default_schema,omitempty"`

	// SQL is the statement under test.
	SQL string `yaml:"sql"`

	// ExpectError is the expected error code. Empty means the statement
	// must compile.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions run against a successful compilation.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion checks one property of the compilation outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Columns is the expected column list (columns).
	Columns []string `yaml:"columns,omitempty"`

	// Text is the substring to look for (contains, not_contains).
	Text string `yaml:"text,omitempty"`

	// Block counts (stats). Nil fields are not checked.
	Triples   *int `yaml:"triples,omitempty"`
	Optionals *int `yaml:"optionals,omitempty"`
	Filters   *int `yaml:"filters,omitempty"`
	Binds     *int `yaml:"binds,omitempty"`
	Equates   *int `yaml:"equates,omitempty"`

	// Status is the expected log status (recorded).
	Status string `yaml:"status,omitempty"`
}

// Assertion type constants.
const (
	AssertColumns     = "columns"
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertStats       = "stats"
	AssertRecorded    = "recorded"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario parses scenario YAML. path anchors a relative catalog
// path and may be empty.
func ParseScenario(path string, data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if s.Catalog != "" && !filepath.IsAbs(s.Catalog) && path != "" {
		s.Catalog = filepath.Join(filepath.Dir(path), s.Catalog)
	}
	s.SQL = strings.TrimSpace(s.SQL)

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.SQL == "" {
		return fmt.Errorf("sql is required")
	}
	if s.ExpectError != "" && !sqlerr.Known(sqlerr.Code(s.ExpectError)) {
		return fmt.Errorf("expect_error: unknown error code %q", s.ExpectError)
	}
	if s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions are required unless expect_error is set")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertColumns:
		if len(a.Columns) == 0 {
			return fmt.Errorf("assertions[%d]: columns list is required for columns", index)
		}
	case AssertContains, AssertNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertStats:
		for _, n := range []*int{a.Triples, a.Optionals, a.Filters, a.Binds, a.Equates} {
			if n != nil && *n < 0 {
				return fmt.Errorf("assertions[%d]: counts must be non-negative", index)
			}
		}
	case AssertRecorded:
		if a.Status != "ok" && a.Status != "error" {
			return fmt.Errorf("assertions[%d]: status must be ok or error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
