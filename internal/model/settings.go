package model

// RunMode selects the engine's transport mode.
type RunMode string

// FixedSource simulates particles from an external source distribution,
// as opposed to an eigenvalue (chain-reaction) calculation.
const FixedSource RunMode = "fixed source"

// Settings holds the run-control knobs. Batches and particles are
// precision/runtime trade-offs only: more particles, lower variance.
type Settings struct {
	Mode RunMode `json:"mode"`

	// Batches is the number of statistical batches.
	Batches int `json:"batches"`

	// Particles is the number of source particles per batch.
	Particles int `json:"particles"`

	// Seed fixes the engine's RNG stream when nonzero, making repeated
	// runs reproduce the same mean.
	Seed int64 `json:"seed,omitempty"`
}
