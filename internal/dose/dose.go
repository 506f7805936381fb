// Package dose reduces a surface-current tally into a physical dose
// rate. Everything here is exact unit arithmetic, independent of the
// transport engine, so the formulas are testable without a run.
package dose

import (
	"fmt"
	"math"
)

// Bin is one tally bin: a mean and its standard deviation, in the
// units accumulated by the tally (pSv·cm² for a dose-weighted current).
type Bin struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Params are the reduction inputs beyond the tally itself.
type Params struct {
	// SphereRadiusCM is the radius of the tally surface; the current is
	// divided by its area 4πr².
	SphereRadiusCM float64 `json:"sphere_radius_cm"`

	// ActivityBq is the absolute source activity in decays per second.
	ActivityBq float64 `json:"activity_bq"`

	// EmissionPerDecay is the number of tallied particles emitted per
	// decay (2 for the Co-60 gamma cascade).
	EmissionPerDecay float64 `json:"emission_per_decay"`
}

// Report is the reduction result.
type Report struct {
	// RatePSvPerSec is the dose rate in pSv/s.
	RatePSvPerSec float64 `json:"rate_psv_per_s"`

	// StdDevPSvPerSec is the tally standard deviation carried through
	// the same scaling.
	StdDevPSvPerSec float64 `json:"std_dev_psv_per_s"`

	// Bins is the number of tally bins that were summed. Callers should
	// treat Bins > 1 with suspicion: energy-resolved bins summed
	// blindly lose their resolution.
	Bins int `json:"bins"`

	Params Params `json:"params"`
}

// SumBins sums the mean and standard-deviation columns across bins.
// The standard deviations are summed directly, not combined in
// quadrature; the reduction reproduces the historical formula.
func SumBins(bins []Bin) (mean, stddev float64, n int) {
	for _, b := range bins {
		mean += b.Mean
		stddev += b.StdDev
	}
	return mean, stddev, len(bins)
}

// PerArea converts a surface-integrated current (pSv·cm²) to a
// per-area dose (pSv) by dividing by the sphere area 4πr².
func PerArea(current, radiusCM float64) float64 {
	return current / (4 * math.Pi * radiusCM * radiusCM)
}

// Rate scales a per-source-particle dose (pSv) by the true particle
// emission rate (activity × particles per decay) to a dose rate
// (pSv/s). Linear in both factors.
func Rate(perParticle, activityBq, emissionPerDecay float64) float64 {
	return perParticle * activityBq * emissionPerDecay
}

// Reduce composes SumBins, PerArea, and Rate.
func Reduce(bins []Bin, p Params) (*Report, error) {
	if len(bins) == 0 {
		return nil, fmt.Errorf("reduce: no tally bins")
	}
	if p.SphereRadiusCM <= 0 {
		return nil, fmt.Errorf("reduce: sphere radius %g must be positive", p.SphereRadiusCM)
	}
	if p.ActivityBq < 0 || p.EmissionPerDecay < 0 {
		return nil, fmt.Errorf("reduce: activity %g and emission rate %g must be non-negative", p.ActivityBq, p.EmissionPerDecay)
	}

	mean, stddev, n := SumBins(bins)
	perArea := PerArea(mean, p.SphereRadiusCM)
	stdPerArea := PerArea(stddev, p.SphereRadiusCM)

	return &Report{
		RatePSvPerSec:   Rate(perArea, p.ActivityBq, p.EmissionPerDecay),
		StdDevPSvPerSec: Rate(stdPerArea, p.ActivityBq, p.EmissionPerDecay),
		Bins:            n,
		Params:          p,
	}, nil
}
