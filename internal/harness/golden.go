package harness

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

var sparqlVar = regexp.MustCompile(`\?[A-Za-z_][A-Za-z0-9_]*`)

// Snapshot returns the golden text of a result: the SPARQL with
// variables renamed ?v1, ?v2, ... in order of first appearance, or the
// error code for a rejected statement.
func Snapshot(r *Result) []byte {
	if r.ErrorCode != "" {
		return []byte(fmt.Sprintf("ERROR %s\n", r.ErrorCode))
	}
	return []byte(CanonicalVars(r.SPARQL))
}

// CanonicalVars renames every variable in text by order of first
// appearance.
func CanonicalVars(text string) string {
	names := map[string]string{}
	return sparqlVar.ReplaceAllStringFunc(text, func(v string) string {
		if n, ok := names[v]; ok {
			return n
		}
		n := "?v" + fmt.Sprint(len(names)+1)
		names[v] = n
		return n
	})
}

// RunWithGolden runs the scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(result))
	return result, nil
}

// GoldenPath returns the golden file of a scenario file: golden/ is a
// sibling of the directory holding the scenario, as in testdata/.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(filepath.Dir(scenarioFile)), "golden", name+".golden")
}
