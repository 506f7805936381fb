package model

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Input file names in the engine's native declarative format.
const (
	MaterialsXML = "materials.xml"
	GeometryXML  = "geometry.xml"
	SettingsXML  = "settings.xml"
	TalliesXML   = "tallies.xml"
)

// WriteInputs exports the model as the engine's four XML input files
// into dir. Output is deterministic: declaration order is preserved
// and floats use shortest round-trip formatting, so exported files are
// stable across runs and suitable for golden comparison.
func (m *Model) WriteInputs(dir string) error {
	files := []struct {
		name string
		doc  any
	}{
		{MaterialsXML, m.materialsDoc()},
		{GeometryXML, m.geometryDoc()},
		{SettingsXML, m.settingsDoc()},
		{TalliesXML, m.talliesDoc()},
	}

	for _, f := range files {
		data, err := xml.MarshalIndent(f.doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		content := append([]byte(xml.Header), append(data, '\n')...)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

// ftoa formats a float the way the engine's own writers do: shortest
// representation that round-trips.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func ftoaList(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = ftoa(v)
	}
	return strings.Join(parts, " ")
}

type xmlMaterials struct {
	XMLName   xml.Name      `xml:"materials"`
	Materials []xmlMaterial `xml:"material"`
}

type xmlMaterial struct {
	ID          int          `xml:"id,attr"`
	Name        string       `xml:"name,attr"`
	Temperature string       `xml:"temperature,omitempty"`
	Density     xmlDensity   `xml:"density"`
	Elements    []xmlElement `xml:"element"`
}

type xmlDensity struct {
	Units string `xml:"units,attr"`
	Value string `xml:"value,attr"`
}

type xmlElement struct {
	Name string `xml:"name,attr"`
	AO   string `xml:"ao,attr,omitempty"`
	WO   string `xml:"wo,attr,omitempty"`
}

func (m *Model) materialsDoc() xmlMaterials {
	doc := xmlMaterials{}
	for _, mat := range m.Materials {
		xm := xmlMaterial{
			ID:      mat.ID,
			Name:    mat.Name,
			Density: xmlDensity{Units: "g/cm3", Value: ftoa(mat.DensityGCC)},
		}
		if mat.TemperatureK > 0 {
			xm.Temperature = ftoa(mat.TemperatureK)
		}
		for _, e := range mat.Elements {
			xe := xmlElement{Name: e.Symbol}
			if mat.FractionType == WeightFraction {
				xe.WO = ftoa(e.Fraction)
			} else {
				xe.AO = ftoa(e.Fraction)
			}
			xm.Elements = append(xm.Elements, xe)
		}
		doc.Materials = append(doc.Materials, xm)
	}
	return doc
}

type xmlGeometry struct {
	XMLName  xml.Name     `xml:"geometry"`
	Cells    []xmlCell    `xml:"cell"`
	Surfaces []xmlSurface `xml:"surface"`
}

type xmlCell struct {
	ID       int    `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Material string `xml:"material,attr"`
	Region   string `xml:"region,attr"`
}

type xmlSurface struct {
	ID       int    `xml:"id,attr"`
	Type     string `xml:"type,attr"`
	Coeffs   string `xml:"coeffs,attr"`
	Boundary string `xml:"boundary,attr,omitempty"`
}

func (m *Model) geometryDoc() xmlGeometry {
	doc := xmlGeometry{}
	for _, c := range m.Cells {
		mat := "void"
		if !c.Void() {
			mat = strconv.Itoa(c.MaterialID)
		}
		doc.Cells = append(doc.Cells, xmlCell{
			ID:       c.ID,
			Name:     c.Name,
			Material: mat,
			Region:   c.Region.String(),
		})
	}
	for _, s := range m.Surfaces {
		xs := xmlSurface{
			ID:     s.ID(),
			Type:   s.kind(),
			Coeffs: ftoaList(s.coeffs()),
		}
		if s.Boundary() != Transmission {
			xs.Boundary = string(s.Boundary())
		}
		doc.Surfaces = append(doc.Surfaces, xs)
	}
	return doc
}

type xmlSettings struct {
	XMLName   xml.Name  `xml:"settings"`
	RunMode   string    `xml:"run_mode"`
	Particles int       `xml:"particles"`
	Batches   int       `xml:"batches"`
	Seed      int64     `xml:"seed,omitempty"`
	Source    xmlSource `xml:"source"`
	Output    xmlOutput `xml:"output"`
}

type xmlSource struct {
	Strength string   `xml:"strength,attr"`
	Particle string   `xml:"particle,attr"`
	Space    xmlDist  `xml:"space"`
	Angle    xmlAngle `xml:"angle"`
	Energy   xmlDist  `xml:"energy"`
}

type xmlDist struct {
	Type       string `xml:"type,attr"`
	Parameters string `xml:"parameters,omitempty"`
}

type xmlAngle struct {
	Type string `xml:"type,attr"`
}

type xmlOutput struct {
	Tallies bool `xml:"tallies"`
}

func (m *Model) settingsDoc() xmlSettings {
	strength := m.Source.Strength
	if strength == 0 {
		strength = 1
	}

	// Discrete spectrum parameters: energies then weights.
	energies := make([]float64, len(m.Source.Lines))
	weights := make([]float64, len(m.Source.Lines))
	for i, l := range m.Source.Lines {
		energies[i] = l.EnergyEV
		weights[i] = l.Weight
	}

	return xmlSettings{
		RunMode:   string(m.Settings.Mode),
		Particles: m.Settings.Particles,
		Batches:   m.Settings.Batches,
		Seed:      m.Settings.Seed,
		Source: xmlSource{
			Strength: ftoa(strength),
			Particle: string(m.Source.Particle),
			Space: xmlDist{
				Type:       "point",
				Parameters: ftoaList([]float64{m.Source.Position.X, m.Source.Position.Y, m.Source.Position.Z}),
			},
			Angle: xmlAngle{Type: "isotropic"},
			Energy: xmlDist{
				Type:       "discrete",
				Parameters: ftoaList(energies) + " " + ftoaList(weights),
			},
		},
		// Tally summary output on: reduction reads the text summary, not
		// the binary statepoint.
		Output: xmlOutput{Tallies: true},
	}
}

type xmlTallies struct {
	XMLName xml.Name    `xml:"tallies"`
	Filters []xmlFilter `xml:"filter"`
	Tallies []xmlTally  `xml:"tally"`
}

type xmlFilter struct {
	ID     int    `xml:"id,attr"`
	Type   string `xml:"type,attr"`
	Bins   string `xml:"bins,omitempty"`
	Energy string `xml:"energy,omitempty"`
	Y      string `xml:"y,omitempty"`
}

type xmlTally struct {
	ID      int    `xml:"id,attr"`
	Name    string `xml:"name,attr"`
	Filters string `xml:"filters"`
	Scores  string `xml:"scores"`
}

func (m *Model) talliesDoc() xmlTallies {
	doc := xmlTallies{}
	for _, t := range m.Tallies {
		var filterIDs []string
		if t.Surface != nil {
			doc.Filters = append(doc.Filters, xmlFilter{
				ID:   t.Surface.FilterID,
				Type: "surface",
				Bins: strconv.Itoa(t.Surface.SurfaceID),
			})
			filterIDs = append(filterIDs, strconv.Itoa(t.Surface.FilterID))
		}
		if t.Particle != nil {
			doc.Filters = append(doc.Filters, xmlFilter{
				ID:   t.Particle.FilterID,
				Type: "particle",
				Bins: string(t.Particle.Particle),
			})
			filterIDs = append(filterIDs, strconv.Itoa(t.Particle.FilterID))
		}
		if t.EnergyFunction != nil {
			doc.Filters = append(doc.Filters, xmlFilter{
				ID:     t.EnergyFunction.FilterID,
				Type:   "energyfunction",
				Energy: ftoaList(t.EnergyFunction.EnergiesEV),
				Y:      ftoaList(t.EnergyFunction.Values),
			})
			filterIDs = append(filterIDs, strconv.Itoa(t.EnergyFunction.FilterID))
		}
		doc.Tallies = append(doc.Tallies, xmlTally{
			ID:      t.ID,
			Name:    t.Name,
			Filters: strings.Join(filterIDs, " "),
			Scores:  string(t.Score),
		})
	}
	return doc
}
