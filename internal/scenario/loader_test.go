package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
)

const validScenarioCUE = `
scenario: {
	name: "co60-csi-test"
	detector_material: {
		name:        "CsI"
		density_gcc: 4.51
		elements: [
			{symbol: "Cs", fraction: 0.5},
			{symbol: "I", fraction: 0.5},
		]
	}
	environment_material: {
		name:        "Air"
		density_gcc: 0.001205
		elements: [
			{symbol: "N", fraction: 0.784431},
			{symbol: "O", fraction: 0.210748},
			{symbol: "Ar", fraction: 0.004821},
		]
	}
	geometry: {
		detector: {
			half_width_cm:  2.5
			half_height_cm: 5
			z_min_cm:       -10
			z_max_cm:       0
		}
		environment: {center: [30, 0, 0], radius_cm: 80}
		source_marker: {center: [30, 0, 0], radius_cm: 2}
	}
	source: {
		position: [60, 0, 0]
		particle: "photon"
		lines: [
			{energy_ev: 1.17e6, weight: 1},
			{energy_ev: 1.33e6, weight: 1},
		]
	}
	settings: {batches: 20, particles: 100000}
	tally: {name: "dose", particle: "photon", dose_geometry: "AP"}
	reduction: {activity_bq: 124300, emission_per_decay: 2}
}
`

func writeScenarioDir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scenario.cue"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func loadErrCode(t *testing.T, err error) string {
	t.Helper()
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	return le.Code
}

func TestLoad_Valid(t *testing.T) {
	dir := writeScenarioDir(t, validScenarioCUE)

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if s.Name != "co60-csi-test" {
		t.Errorf("name = %q, want co60-csi-test", s.Name)
	}
	if len(s.Source.Lines) != 2 || s.Source.Lines[1].EnergyEV != 1.33e6 {
		t.Errorf("unexpected source lines: %+v", s.Source.Lines)
	}
	if s.Geometry.Environment.RadiusCM != 80 {
		t.Errorf("environment radius = %g, want 80", s.Geometry.Environment.RadiusCM)
	}

	if _, err := s.BuildModel(); err != nil {
		t.Errorf("loaded scenario does not build: %v", err)
	}
}

func TestLoad_DirNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	if code := loadErrCode(t, err); code != ErrCodeNotFound {
		t.Errorf("code = %s, want %s", code, ErrCodeNotFound)
	}
}

func TestLoad_NoCUEFiles(t *testing.T) {
	_, err := Load(t.TempDir())
	if code := loadErrCode(t, err); code != ErrCodeNoFiles {
		t.Errorf("code = %s, want %s", code, ErrCodeNoFiles)
	}
}

func TestLoad_InvalidScenario(t *testing.T) {
	// Valid CUE that decodes to a scenario failing validation.
	dir := writeScenarioDir(t, `
scenario: {
	name: "broken"
	geometry: detector: {z_min_cm: -10, z_max_cm: 0}
	reduction: {activity_bq: -1, emission_per_decay: 2}
}
`)
	_, err := Load(dir)
	if code := loadErrCode(t, err); code != ErrCodeInvalid {
		t.Errorf("code = %s, want %s", code, ErrCodeInvalid)
	}
}

const brokenScenarioCUE = `
scenario: {
	name: "broken"
	geometry: detector: {z_min_cm: 0, z_max_cm: 0}
	reduction: {activity_bq: -1, emission_per_decay: 0}
}
`

func TestLoadScenario_CollectAll(t *testing.T) {
	// Zero radius, empty z range, bad activity, bad emission, no lines.
	dir := writeScenarioDir(t, brokenScenarioCUE)

	_, errs := LoadScenario(dir, LoadModeCollectAll)
	if len(errs) < 2 {
		t.Fatalf("expected multiple collected errors, got %d: %v", len(errs), errs)
	}
	for _, err := range errs {
		if code := loadErrCode(t, err); code != ErrCodeInvalid {
			t.Errorf("code = %s, want %s (%v)", code, ErrCodeInvalid, err)
		}
	}
}

func TestLoadScenario_FailFastStopsAtFirst(t *testing.T) {
	dir := writeScenarioDir(t, brokenScenarioCUE)

	_, errs := LoadScenario(dir, LoadModeFailFast)
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error in fail-fast mode, got %d: %v", len(errs), errs)
	}
	if code := loadErrCode(t, errs[0]); code != ErrCodeInvalid {
		t.Errorf("code = %s, want %s", code, ErrCodeInvalid)
	}
}

func TestCompileScenario_CollectAll(t *testing.T) {
	value := cuecontext.New().CompileString(brokenScenarioCUE)
	_, errs := CompileScenario(value, LoadModeCollectAll)
	if len(errs) < 2 {
		t.Fatalf("expected multiple collected errors, got %d: %v", len(errs), errs)
	}
}

func TestCompile_MissingScenarioStruct(t *testing.T) {
	value := cuecontext.New().CompileString(`other: {name: "x"}`)
	_, err := Compile(value)
	if code := loadErrCode(t, err); code != ErrCodeDecode {
		t.Errorf("code = %s, want %s", code, ErrCodeDecode)
	}
}

func TestCompile_FromString(t *testing.T) {
	value := cuecontext.New().CompileString(validScenarioCUE)
	if err := value.Err(); err != nil {
		t.Fatalf("compile: %v", err)
	}
	s, err := Compile(value)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if s.Tally.Name != "dose" {
		t.Errorf("tally name = %q, want dose", s.Tally.Name)
	}
}
