package model

// FractionType selects how nuclide fractions are interpreted by the
// transport engine.
type FractionType string

const (
	// AtomFraction interprets fractions as relative atom counts.
	// The engine normalizes them; they need not sum to 1.
	AtomFraction FractionType = "ao"

	// WeightFraction interprets fractions as mass fractions.
	WeightFraction FractionType = "wo"
)

// ElementFraction is one (element, fraction) component of a material.
type ElementFraction struct {
	// Symbol is the element symbol ("Cs", "I", "N", ...).
	Symbol string `json:"symbol"`

	// Fraction is the atom or weight fraction per the material's
	// FractionType.
	Fraction float64 `json:"fraction"`
}

// Material declares a homogeneous material by elemental composition
// and mass density.
type Material struct {
	// ID is the engine-facing numeric id. Must be unique and positive.
	ID int `json:"id"`

	// Name is a human-readable label ("CsI", "Air").
	Name string `json:"name"`

	// Elements lists the composition in declaration order.
	Elements []ElementFraction `json:"elements"`

	// FractionType applies to every entry in Elements.
	FractionType FractionType `json:"fraction_type"`

	// DensityGCC is the mass density in g/cm3.
	DensityGCC float64 `json:"density_gcc"`

	// TemperatureK is an optional material temperature in kelvin.
	// Zero means engine default.
	TemperatureK float64 `json:"temperature_k,omitempty"`
}
