// Package harness provides a conformance suite for the dose-rate
// reduction and the exported transport inputs.
//
// Reduction cases are YAML files pairing tally bins with the dose rate
// they must reduce to; golden comparisons pin the exact bytes of the
// XML input files a scenario exports. Both guard the numeric contract
// end to end: a change to the reduction arithmetic or to input
// formatting fails the suite before it can silently shift results.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tmadell/gdose/internal/dose"
)

// BinSpec is one tally bin in a reduction case.
type BinSpec struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"std_dev"`
}

// ParamSpec is the reduction parameter set for a case.
type ParamSpec struct {
	SphereRadiusCM   float64 `yaml:"radius_cm"`
	ActivityBq       float64 `yaml:"activity_bq"`
	EmissionPerDecay float64 `yaml:"emission_per_decay"`
}

// ExpectSpec is the expected reduction outcome. Tolerance is absolute;
// zero means exact comparison is replaced by the default tolerance.
type ExpectSpec struct {
	RatePSvS   float64 `yaml:"rate_psv_s"`
	StdDevPSvS float64 `yaml:"std_dev_psv_s"`
	Tolerance  float64 `yaml:"tolerance,omitempty"`
}

// ReductionCase is one YAML conformance case.
type ReductionCase struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Bins        []BinSpec  `yaml:"bins"`
	Params      ParamSpec  `yaml:"params"`
	Expect      ExpectSpec `yaml:"expect"`
}

// defaultTolerance bounds the drift a reduction case accepts. The
// expected values in the fixtures carry six significant digits.
const defaultTolerance = 1e-5

// LoadCases reads every .yaml file under dir, one case per file,
// sorted by file name for stable test ordering.
func LoadCases(dir string) ([]ReductionCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load reduction cases: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("load reduction cases: no .yaml files in %s", dir)
	}

	cases := make([]ReductionCase, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load reduction case %s: %w", path, err)
		}
		var c ReductionCase
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse reduction case %s: %w", path, err)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("reduction case %s: missing name", path)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// RunCase reduces the case's bins and asserts the outcome.
func RunCase(t *testing.T, c ReductionCase) {
	t.Helper()

	bins := make([]dose.Bin, len(c.Bins))
	for i, b := range c.Bins {
		bins[i] = dose.Bin{Mean: b.Mean, StdDev: b.StdDev}
	}

	report, err := dose.Reduce(bins, dose.Params{
		SphereRadiusCM:   c.Params.SphereRadiusCM,
		ActivityBq:       c.Params.ActivityBq,
		EmissionPerDecay: c.Params.EmissionPerDecay,
	})
	require.NoError(t, err, "case %s: reduction failed", c.Name)

	tol := c.Expect.Tolerance
	if tol == 0 {
		tol = defaultTolerance
	}
	require.InDelta(t, c.Expect.RatePSvS, report.RatePSvPerSec, tol,
		"case %s: dose rate", c.Name)
	require.InDelta(t, c.Expect.StdDevPSvS, report.StdDevPSvPerSec, tol,
		"case %s: std dev", c.Name)
	require.Equal(t, len(c.Bins), report.Bins, "case %s: bin count", c.Name)
}
