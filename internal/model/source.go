package model

// Particle identifies a transported particle species.
type Particle string

const (
	Photon  Particle = "photon"
	Neutron Particle = "neutron"
)

// EnergyLine is one discrete emission line.
type EnergyLine struct {
	// EnergyEV is the line energy in eV.
	EnergyEV float64 `json:"energy_ev"`

	// Weight is the relative emission probability. Weights are
	// normalized by the engine; equal weights mean equally likely lines.
	Weight float64 `json:"weight"`
}

// Source is an isotropic point source with a discrete energy spectrum.
//
// Strength is the engine's source weight, not a physical emission rate;
// tally results stay normalized per source particle regardless of it.
// The absolute rate enters only at reduction time.
type Source struct {
	Position Point        `json:"position"`
	Particle Particle     `json:"particle"`
	Lines    []EnergyLine `json:"lines"`
	Strength float64      `json:"strength"`
}
