package model

// Score identifies what a tally accumulates.
type Score string

// Current counts particle crossings of a surface, optionally weighted
// by an energy function filter.
const Current Score = "current"

// SurfaceFilter restricts a tally to crossings of one surface.
type SurfaceFilter struct {
	FilterID  int `json:"filter_id"`
	SurfaceID int `json:"surface_id"`
}

// ParticleFilter restricts a tally to one particle species.
type ParticleFilter struct {
	FilterID int      `json:"filter_id"`
	Particle Particle `json:"particle"`
}

// EnergyFunctionFilter weights each scored event by a tabulated
// function of the particle energy. With dose coefficients as the
// function, a current tally accumulates pSv·cm² directly.
//
// EnergiesEV and Values are parallel and EnergiesEV must be strictly
// increasing; the engine interpolates between points.
type EnergyFunctionFilter struct {
	FilterID   int       `json:"filter_id"`
	EnergiesEV []float64 `json:"energies_ev"`
	Values     []float64 `json:"values"`
}

// Tally declares one accumulator: filters select which events score,
// Score selects what is accumulated. After a run the engine reports a
// mean and standard deviation per filter-bin combination.
//
// Only single-bin filters are used here (one surface, one particle,
// one energy function), so the tally yields exactly one bin. An
// energy-bin filter would multiply the bin count; reduction callers
// are expected to check the bin count before summing.
type Tally struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	Surface        *SurfaceFilter        `json:"surface,omitempty"`
	Particle       *ParticleFilter       `json:"particle,omitempty"`
	EnergyFunction *EnergyFunctionFilter `json:"energy_function,omitempty"`

	Score Score `json:"score"`
}
