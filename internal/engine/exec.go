package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/tmadell/gdose/internal/model"
)

// CrossSectionsEnv is the environment variable the engine reads for
// its nuclear cross-section library path. ExecEngine always sets it
// explicitly from its own configuration instead of inheriting ambient
// process state.
const CrossSectionsEnv = "OPENMC_CROSS_SECTIONS"

// DefaultBinary is the engine executable resolved on PATH.
const DefaultBinary = "openmc"

// ExecEngine runs the external transport engine binary.
//
// Each run gets a fresh working directory <workdir>/<run-id>/ holding
// the exported XML inputs and the engine's outputs. Prior results are
// never globbed away from a shared directory: isolation by run id is
// what guarantees a clean slate, and cleanup removes only the run's
// own directory.
type ExecEngine struct {
	binary        string
	crossSections string
	workDir       string
	keep          bool
	idGen         RunIDGenerator
	log           *slog.Logger
}

// ExecOption configures an ExecEngine.
type ExecOption func(*ExecEngine)

// WithBinary sets the engine executable path (default "openmc").
func WithBinary(path string) ExecOption {
	return func(e *ExecEngine) { e.binary = path }
}

// WithCrossSections sets the cross-section library path passed to the
// engine process. Required: runs fail fast without it.
func WithCrossSections(path string) ExecOption {
	return func(e *ExecEngine) { e.crossSections = path }
}

// WithWorkDir sets the parent directory for per-run directories.
func WithWorkDir(dir string) ExecOption {
	return func(e *ExecEngine) { e.workDir = dir }
}

// WithKeepRunDir keeps the run directory (inputs, statepoint, summary)
// after a successful run instead of removing it.
func WithKeepRunDir(keep bool) ExecOption {
	return func(e *ExecEngine) { e.keep = keep }
}

// WithRunIDGenerator overrides the run id generator (for testing).
func WithRunIDGenerator(g RunIDGenerator) ExecOption {
	return func(e *ExecEngine) { e.idGen = g }
}

// WithLogger sets the logger (default slog.Default).
func WithLogger(l *slog.Logger) ExecOption {
	return func(e *ExecEngine) { e.log = l }
}

// NewExecEngine creates an engine adapter. Cross sections may also
// come from the process environment when not configured explicitly.
func NewExecEngine(opts ...ExecOption) *ExecEngine {
	e := &ExecEngine{
		binary:  DefaultBinary,
		workDir: ".",
		idGen:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.crossSections == "" {
		e.crossSections = os.Getenv(CrossSectionsEnv)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// Run exports m, invokes the engine, and parses the tally summary.
// Cancelling ctx kills the engine process.
func (e *ExecEngine) Run(ctx context.Context, m *model.Model) (*Result, error) {
	runID := e.idGen.Generate()

	if e.crossSections == "" {
		return nil, newRunError(ErrCodeConfigMissing, runID,
			fmt.Sprintf("cross-section library path not configured (set %s or pass --cross-sections)", CrossSectionsEnv), nil)
	}
	if _, err := os.Stat(e.crossSections); err != nil {
		return nil, newRunError(ErrCodeConfigMissing, runID,
			fmt.Sprintf("cross-section library %s not readable", e.crossSections), err)
	}

	dir := filepath.Join(e.workDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newRunError(ErrCodeEngineStart, runID, "create run directory", err)
	}
	cleanup := true
	defer func() {
		if cleanup && !e.keep {
			// Scoped: removes only this run's directory.
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				e.log.Warn("failed to remove run directory", "dir", dir, "error", rmErr)
			}
		}
	}()

	if err := m.WriteInputs(dir); err != nil {
		return nil, newRunError(ErrCodeEngineStart, runID, "export model inputs", err)
	}

	e.log.Info("engine starting",
		"run_id", runID,
		"binary", e.binary,
		"dir", dir,
		"batches", m.Settings.Batches,
		"particles", m.Settings.Particles)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), CrossSectionsEnv+"="+e.crossSections)
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, newRunError(ErrCodeEngineStart, runID,
			fmt.Sprintf("start engine binary %s", e.binary), err)
	}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newRunError(ErrCodeEngineExit, runID,
			fmt.Sprintf("engine exited with failure: %s", firstLines(stderr.String(), 5)), err)
	}
	elapsed := time.Since(start)

	summary, err := os.Open(filepath.Join(dir, TallySummaryFile))
	if err != nil {
		return nil, newRunError(ErrCodeNoTally, runID,
			"engine wrote no tally summary (is tally output enabled in settings?)", err)
	}
	defer summary.Close()

	tallies, err := ParseTallySummary(summary)
	if err != nil {
		return nil, newRunError(ErrCodeParse, runID, "parse tally summary", err)
	}

	res := &Result{
		RunID:   runID,
		Tallies: tallies,
		Elapsed: elapsed,
	}
	if e.keep {
		res.StatepointPath = e.findStatepoint(dir)
		cleanup = false
	}

	e.log.Info("engine finished", "run_id", runID, "elapsed", elapsed, "tallies", len(tallies))
	return res, nil
}

// findStatepoint locates the engine's statepoint file within the run
// directory. The search never leaves dir.
func (e *ExecEngine) findStatepoint(dir string) string {
	matches, err := filepath.Glob(filepath.Join(dir, "statepoint.*.h5"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1]
}

func firstLines(s string, n int) string {
	lines := bytes.Split([]byte(s), []byte{'\n'})
	if len(lines) > n {
		lines = lines[:n]
	}
	return string(bytes.Join(lines, []byte("; ")))
}
