// Package engine drives the external Monte Carlo transport engine.
//
// The engine is an opaque collaborator: this package exports a model
// to the engine's XML input files, invokes the engine binary in a
// per-run working directory, and reads back the tally summary it
// writes. Transport physics, random-number handling, and the binary
// statepoint format all live on the far side of that boundary.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/tmadell/gdose/internal/dose"
	"github.com/tmadell/gdose/internal/model"
)

// TallyResult holds one tally's accumulated bins after a run. Bin
// values are normalized per source particle by the engine.
type TallyResult struct {
	ID   int        `json:"id"`
	Name string     `json:"name"`
	Bins []dose.Bin `json:"bins"`
}

// Result is the outcome of one engine run.
type Result struct {
	// RunID names the run and its working directory.
	RunID string `json:"run_id"`

	// Tallies in the order the engine reported them.
	Tallies []TallyResult `json:"tallies"`

	// StatepointPath is the engine's binary result file, kept opaque.
	// Empty when the run directory was not kept.
	StatepointPath string `json:"statepoint_path,omitempty"`

	// Elapsed is wall-clock transport time.
	Elapsed time.Duration `json:"elapsed"`
}

// Tally returns the named tally result.
func (r *Result) Tally(name string) (*TallyResult, error) {
	for i := range r.Tallies {
		if r.Tallies[i].Name == name {
			return &r.Tallies[i], nil
		}
	}
	return nil, fmt.Errorf("no tally named %q in result (have %d tallies)", name, len(r.Tallies))
}

// Engine runs a transport model to completion and returns its tally
// results. Run blocks until the engine finishes or ctx is cancelled.
type Engine interface {
	Run(ctx context.Context, m *model.Model) (*Result, error)
}
