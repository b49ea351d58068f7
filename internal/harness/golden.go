package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/countersim/internal/ir"
)

// GoldenDir is where golden traces live, relative to the package under test.
const GoldenDir = "testdata/golden"

// Snapshot renders a scenario result as canonical JSON for golden
// comparison. Only public data is included.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	trace := make(ir.IRArray, len(result.Trace))
	for i, event := range result.Trace {
		trace[i] = ir.IRObject{
			"seq":          ir.IRInt(event.Seq),
			"id":           ir.IRString(event.ID),
			"operation":    ir.IRString(event.Operation),
			"visibility":   ir.IRString(event.Visibility),
			"args":         nonNil(event.Args),
			"output_case":  ir.IRString(event.OutputCase),
			"result":       nonNil(event.Result),
			"ledger_after": ir.IRString(event.LedgerAfter),
		}
	}

	return ir.MarshalCanonical(ir.IRObject{
		"scenario_name": ir.IRString(scenario.Name),
		"session":       ir.IRString(result.SessionID),
		"network":       ir.IRString(result.Network),
		"trace":         trace,
		"final_ledger":  ledgerFields(result),
	})
}

func nonNil(obj ir.IRObject) ir.IRObject {
	if obj == nil {
		return ir.IRObject{}
	}
	return obj
}

// GoldenPath returns the golden file next to a scenario file:
// <dir>/golden/<name>.golden.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// RunWithGolden executes a scenario and compares its snapshot with
// testdata/golden/<scenario.Name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario, result)
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
