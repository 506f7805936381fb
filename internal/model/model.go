package model

import (
	"fmt"
)

// Severity classifies a validation finding.
type Severity string

const (
	// SeverityError findings make the model unusable.
	SeverityError Severity = "error"

	// SeverityWarning findings flag likely mistakes that do not stop a
	// run (a source outside the marker sphere, a sampled tiling gap).
	SeverityWarning Severity = "warning"
)

// Validation finding codes.
const (
	FindingDuplicateID    = "DUPLICATE_ID"
	FindingBadReference   = "BAD_REFERENCE"
	FindingBadValue       = "BAD_VALUE"
	FindingNoBoundary     = "NO_BOUNDARY"
	FindingEmptySpectrum  = "EMPTY_SPECTRUM"
	FindingSourceUnplaced = "SOURCE_UNPLACED"
	FindingMarkerMismatch = "MARKER_MISMATCH"
	FindingTilingGap      = "TILING_GAP"
	FindingTilingOverlap  = "TILING_OVERLAP"
)

// Finding is one validation result.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s]: %s", f.Severity, f.Code, f.Message)
}

// Model is a complete transport model. Built once, validated, exported.
type Model struct {
	Materials []*Material
	Surfaces  []Surface
	Cells     []*Cell
	Source    Source
	Settings  Settings
	Tallies   []*Tally

	// MarkerCellID optionally names a cell that exists only to mark the
	// source position in plots. Validation checks it actually contains
	// the source point; a mismatch is reported, never corrected, since
	// the intent behind a disagreement is ambiguous.
	MarkerCellID int

	// Boundary is the outermost surface; the sampled tiling check
	// confines itself to points inside it.
	Boundary *Sphere
}

// FindCell returns the first cell containing p, or nil when p lies in
// undefined space.
func (m *Model) FindCell(p Point) *Cell {
	for _, c := range m.Cells {
		if c.Region.Contains(p) {
			return c
		}
	}
	return nil
}

// Validate checks structural invariants and returns all findings.
// The model is runnable iff no finding has SeverityError.
func (m *Model) Validate() []Finding {
	var out []Finding

	out = append(out, m.checkIDs()...)
	out = append(out, m.checkValues()...)
	out = append(out, m.checkBoundary()...)
	out = append(out, m.checkSource()...)

	return out
}

// Runnable reports whether findings contain no errors.
func Runnable(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return false
		}
	}
	return true
}

func (m *Model) checkIDs() []Finding {
	var out []Finding

	seen := map[string]bool{}
	dup := func(kind string, id int) {
		key := fmt.Sprintf("%s/%d", kind, id)
		if seen[key] {
			out = append(out, Finding{SeverityError, FindingDuplicateID,
				fmt.Sprintf("duplicate %s id %d", kind, id)})
		}
		seen[key] = true
		if id <= 0 {
			out = append(out, Finding{SeverityError, FindingBadValue,
				fmt.Sprintf("%s id %d must be positive", kind, id)})
		}
	}

	matIDs := map[int]bool{}
	for _, mat := range m.Materials {
		dup("material", mat.ID)
		matIDs[mat.ID] = true
	}
	surfIDs := map[int]bool{}
	for _, s := range m.Surfaces {
		dup("surface", s.ID())
		surfIDs[s.ID()] = true
	}
	for _, c := range m.Cells {
		dup("cell", c.ID)
		if !c.Void() && !matIDs[c.MaterialID] {
			out = append(out, Finding{SeverityError, FindingBadReference,
				fmt.Sprintf("cell %d (%s) references unknown material %d", c.ID, c.Name, c.MaterialID)})
		}
	}
	for _, t := range m.Tallies {
		dup("tally", t.ID)
		if t.Surface != nil && !surfIDs[t.Surface.SurfaceID] {
			out = append(out, Finding{SeverityError, FindingBadReference,
				fmt.Sprintf("tally %d (%s) references unknown surface %d", t.ID, t.Name, t.Surface.SurfaceID)})
		}
	}

	return out
}

func (m *Model) checkValues() []Finding {
	var out []Finding

	for _, mat := range m.Materials {
		if mat.DensityGCC <= 0 {
			out = append(out, Finding{SeverityError, FindingBadValue,
				fmt.Sprintf("material %d (%s) density %g must be positive", mat.ID, mat.Name, mat.DensityGCC)})
		}
		if len(mat.Elements) == 0 {
			out = append(out, Finding{SeverityError, FindingBadValue,
				fmt.Sprintf("material %d (%s) has no elements", mat.ID, mat.Name)})
		}
		for _, e := range mat.Elements {
			if e.Fraction <= 0 {
				out = append(out, Finding{SeverityError, FindingBadValue,
					fmt.Sprintf("material %d (%s) element %s fraction %g must be positive", mat.ID, mat.Name, e.Symbol, e.Fraction)})
			}
		}
	}

	if m.Settings.Batches <= 0 {
		out = append(out, Finding{SeverityError, FindingBadValue,
			fmt.Sprintf("batches %d must be positive", m.Settings.Batches)})
	}
	if m.Settings.Particles <= 0 {
		out = append(out, Finding{SeverityError, FindingBadValue,
			fmt.Sprintf("particles %d must be positive", m.Settings.Particles)})
	}

	for _, s := range m.Surfaces {
		if sph, ok := s.(*Sphere); ok && sph.R <= 0 {
			out = append(out, Finding{SeverityError, FindingBadValue,
				fmt.Sprintf("sphere %d radius %g must be positive", sph.ID(), sph.R)})
		}
	}

	if len(m.Source.Lines) == 0 {
		out = append(out, Finding{SeverityError, FindingEmptySpectrum,
			"source has no energy lines"})
	}
	for _, l := range m.Source.Lines {
		if l.EnergyEV <= 0 || l.Weight <= 0 {
			out = append(out, Finding{SeverityError, FindingBadValue,
				fmt.Sprintf("source line (%g eV, weight %g) must be positive", l.EnergyEV, l.Weight)})
		}
	}

	return out
}

func (m *Model) checkBoundary() []Finding {
	for _, s := range m.Surfaces {
		if s.Boundary() == Vacuum {
			return nil
		}
	}
	return []Finding{{SeverityError, FindingNoBoundary,
		"no vacuum boundary surface: particles would escape to undefined space"}}
}

func (m *Model) checkSource() []Finding {
	var out []Finding

	if m.FindCell(m.Source.Position) == nil {
		out = append(out, Finding{SeverityWarning, FindingSourceUnplaced,
			fmt.Sprintf("source position (%g, %g, %g) lies in undefined space",
				m.Source.Position.X, m.Source.Position.Y, m.Source.Position.Z)})
	}

	if m.MarkerCellID != 0 {
		for _, c := range m.Cells {
			if c.ID != m.MarkerCellID {
				continue
			}
			if !c.Region.Contains(m.Source.Position) {
				out = append(out, Finding{SeverityWarning, FindingMarkerMismatch,
					fmt.Sprintf("marker cell %d (%s) does not contain the source position (%g, %g, %g)",
						c.ID, c.Name,
						m.Source.Position.X, m.Source.Position.Y, m.Source.Position.Z)})
			}
		}
	}

	return out
}

// SampleTiling point-samples a grid inside the boundary sphere and
// reports gaps (no cell) and overlaps (more than one cell). A clean
// sample is evidence, not proof: exhaustiveness is not decidable by
// sampling, so findings are warnings.
func (m *Model) SampleTiling(n int) []Finding {
	if m.Boundary == nil || n < 2 {
		return nil
	}

	var out []Finding
	gaps, overlaps := 0, 0
	c, r := m.Boundary.Center, m.Boundary.R

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				p := Point{
					X: c.X - r + 2*r*float64(i)/float64(n-1),
					Y: c.Y - r + 2*r*float64(j)/float64(n-1),
					Z: c.Z - r + 2*r*float64(k)/float64(n-1),
				}
				// Stay strictly inside the boundary; points on or
				// outside it are legitimately undefined.
				if m.Boundary.Evaluate(p) >= -1e-9 {
					continue
				}
				hits := 0
				for _, cell := range m.Cells {
					if cell.Region.Contains(p) {
						hits++
					}
				}
				switch {
				case hits == 0:
					gaps++
				case hits > 1:
					overlaps++
				}
			}
		}
	}

	if gaps > 0 {
		out = append(out, Finding{SeverityWarning, FindingTilingGap,
			fmt.Sprintf("%d sampled points inside the boundary belong to no cell", gaps)})
	}
	if overlaps > 0 {
		out = append(out, Finding{SeverityWarning, FindingTilingOverlap,
			fmt.Sprintf("%d sampled points belong to more than one cell", overlaps)})
	}
	return out
}
