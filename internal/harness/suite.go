package harness

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ScenarioFailure describes one failed scenario in a suite run.
type ScenarioFailure struct {
	Name         string   `json:"name"`
	ScenarioPath string   `json:"scenario_path"`
	Errors       []string `json:"errors"`
}

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// FindScenarios returns the .yaml and .yml files under dir, in lexical
// order. A non-empty filter is a glob matched against the file name
// without its extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	return files, err
}

// RunSuite loads and runs every scenario under dir.
func RunSuite(ctx context.Context, dir, filter string) (*SuiteResult, error) {
	paths, err := FindScenarios(dir, filter)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{Total: len(paths)}
	for _, path := range paths {
		fail := func(name string, errs ...string) {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Name:         name,
				ScenarioPath: path,
				Errors:       errs,
			})
		}

		scenario, err := LoadScenario(path)
		if err != nil {
			fail(filepath.Base(path), fmt.Sprintf("failed to load scenario: %v", err))
			continue
		}

		run, err := RunContext(ctx, scenario)
		if err != nil {
			fail(scenario.Name, fmt.Sprintf("scenario execution failed: %v", err))
			continue
		}
		if !run.Pass {
			fail(scenario.Name, run.Errors...)
			continue
		}
		result.Passed++
	}
	return result, nil
}
