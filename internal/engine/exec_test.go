package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/tmadell/gdose/internal/model"
)

func execTestModel() *model.Model {
	boundary := model.NewBoundarySphere(1, model.Point{}, 50, model.Vacuum)
	return &model.Model{
		Materials: []*model.Material{
			{ID: 1, Name: "Air", FractionType: model.AtomFraction, DensityGCC: 0.001205,
				Elements: []model.ElementFraction{{Symbol: "N", Fraction: 1}}},
		},
		Surfaces: []model.Surface{boundary},
		Cells: []*model.Cell{
			{ID: 1, Name: "world", Region: model.Neg(boundary), MaterialID: 1},
		},
		Source: model.Source{
			Position: model.Point{X: 10},
			Particle: model.Photon,
			Lines:    []model.EnergyLine{{EnergyEV: 1.17e6, Weight: 1}},
			Strength: 1,
		},
		Settings: model.Settings{Mode: model.FixedSource, Batches: 20, Particles: 1000},
		Boundary: boundary,
	}
}

// fakeEngine writes a shell script that stands in for the engine binary.
func fakeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "openmc")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func crossSectionsFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cross_sections.xml")
	if err := os.WriteFile(path, []byte("<cross_sections/>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecEngine_MissingCrossSectionsConfig(t *testing.T) {
	t.Setenv(CrossSectionsEnv, "")

	eng := NewExecEngine(WithLogger(quietLogger()))
	_, err := eng.Run(context.Background(), execTestModel())
	if err == nil {
		t.Fatal("expected error with no cross-section path configured")
	}
	if !IsConfigError(err) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestExecEngine_UnreadableCrossSections(t *testing.T) {
	eng := NewExecEngine(
		WithCrossSections(filepath.Join(t.TempDir(), "no_such_file.xml")),
		WithLogger(quietLogger()),
	)
	_, err := eng.Run(context.Background(), execTestModel())
	if !IsConfigError(err) {
		t.Errorf("expected config error for missing library file, got %v", err)
	}
}

func TestExecEngine_Run(t *testing.T) {
	script := `cat > tallies.out <<'EOF'
 ===================>     TALLY 1: DOSE     <===================

 Surface 7
   Photon
     Current                              3.95042E+00 +/- 1.44211E-02
EOF
`
	workDir := t.TempDir()
	eng := NewExecEngine(
		WithBinary(fakeEngine(t, script)),
		WithCrossSections(crossSectionsFile(t)),
		WithWorkDir(workDir),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(quietLogger()),
	)

	res, err := eng.Run(context.Background(), execTestModel())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.RunID != "run-1" {
		t.Errorf("run id = %q, want run-1", res.RunID)
	}
	tally, err := res.Tally("DOSE")
	if err != nil {
		t.Fatalf("result has no DOSE tally: %v", err)
	}
	if len(tally.Bins) != 1 || tally.Bins[0].Mean != 3.95042 {
		t.Errorf("unexpected bins: %+v", tally.Bins)
	}

	// The run directory is removed once results are read.
	if _, err := os.Stat(filepath.Join(workDir, "run-1")); !os.IsNotExist(err) {
		t.Errorf("run directory survived cleanup: %v", err)
	}
}

func TestExecEngine_KeepRunDir(t *testing.T) {
	script := `touch statepoint.20.h5
cat > tallies.out <<'EOF'
 ===================>     TALLY 1: DOSE     <===================
     Current                              1.00000E+00 +/- 1.00000E-02
EOF
`
	workDir := t.TempDir()
	eng := NewExecEngine(
		WithBinary(fakeEngine(t, script)),
		WithCrossSections(crossSectionsFile(t)),
		WithWorkDir(workDir),
		WithKeepRunDir(true),
		WithRunIDGenerator(NewFixedGenerator("run-keep")),
		WithLogger(quietLogger()),
	)

	res, err := eng.Run(context.Background(), execTestModel())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	dir := filepath.Join(workDir, "run-keep")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("kept run directory missing: %v", err)
	}
	want := filepath.Join(dir, "statepoint.20.h5")
	if res.StatepointPath != want {
		t.Errorf("statepoint path = %q, want %q", res.StatepointPath, want)
	}
	for _, name := range []string{"materials.xml", "geometry.xml", "settings.xml", "tallies.xml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("kept run directory missing %s: %v", name, err)
		}
	}
}

func TestExecEngine_EngineFailure(t *testing.T) {
	script := `echo "ERROR: no cross sections for Cs" >&2
exit 1
`
	eng := NewExecEngine(
		WithBinary(fakeEngine(t, script)),
		WithCrossSections(crossSectionsFile(t)),
		WithWorkDir(t.TempDir()),
		WithLogger(quietLogger()),
	)

	_, err := eng.Run(context.Background(), execTestModel())
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if runErr.Code != ErrCodeEngineExit {
		t.Errorf("code = %s, want %s", runErr.Code, ErrCodeEngineExit)
	}
}

func TestExecEngine_NoTallySummary(t *testing.T) {
	eng := NewExecEngine(
		WithBinary(fakeEngine(t, "exit 0\n")),
		WithCrossSections(crossSectionsFile(t)),
		WithWorkDir(t.TempDir()),
		WithLogger(quietLogger()),
	)

	_, err := eng.Run(context.Background(), execTestModel())
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if runErr.Code != ErrCodeNoTally {
		t.Errorf("code = %s, want %s", runErr.Code, ErrCodeNoTally)
	}
}

func TestExecEngine_ContextCancelled(t *testing.T) {
	eng := NewExecEngine(
		WithBinary(fakeEngine(t, "sleep 30\n")),
		WithCrossSections(crossSectionsFile(t)),
		WithWorkDir(t.TempDir()),
		WithLogger(quietLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Run(ctx, execTestModel())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStubEngine(t *testing.T) {
	stub := &StubEngine{Result: &Result{RunID: "stub"}}
	m := execTestModel()

	res, err := stub.Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.RunID != "stub" || stub.Calls != 1 || stub.LastModel != m {
		t.Errorf("stub did not record the call: %+v", stub)
	}
}
