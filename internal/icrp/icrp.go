// Package icrp provides tabulated effective-dose conversion
// coefficients (particle fluence to effective dose) from ICRP
// Publication 116. Tables are embedded; no network or engine data
// directory is needed to look them up.
package icrp

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

//go:embed data/*.csv
var dataFS embed.FS

// Particle identifies a coefficient table's particle species.
type Particle string

const (
	Photon  Particle = "photon"
	Neutron Particle = "neutron"
)

// Geometry identifies the irradiation geometry convention.
type Geometry string

// AP is anteroposterior irradiation (source in front of the body).
const AP Geometry = "AP"

// UnsupportedError is returned for particle/geometry combinations the
// reference dataset does not tabulate.
type UnsupportedError struct {
	Particle Particle
	Geometry Geometry
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("no dose-coefficient table for particle=%q geometry=%q", e.Particle, e.Geometry)
}

// Table is one dose-coefficient curve: parallel, strictly increasing
// energies (eV) and coefficients (pSv·cm²).
type Table struct {
	Particle   Particle
	Geometry   Geometry
	EnergiesEV []float64
	Coeffs     []float64
}

var tableFiles = map[Particle]map[Geometry]string{
	Photon:  {AP: "data/icrp116_photon_ap.csv"},
	Neutron: {AP: "data/icrp116_neutron_ap.csv"},
}

// Coefficients loads the dose-coefficient table for a particle and
// irradiation geometry. The returned slices are freshly allocated and
// safe to mutate.
func Coefficients(p Particle, g Geometry) (*Table, error) {
	byGeom, ok := tableFiles[p]
	if !ok {
		return nil, &UnsupportedError{Particle: p, Geometry: g}
	}
	name, ok := byGeom[g]
	if !ok {
		return nil, &UnsupportedError{Particle: p, Geometry: g}
	}

	f, err := dataFS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open embedded table %s: %w", name, err)
	}
	defer f.Close()

	t, err := parseTable(name, f)
	if err != nil {
		return nil, err
	}
	t.Particle = p
	t.Geometry = g
	return t, nil
}

// parseTable reads a two-column energy,coefficient CSV. Comment lines
// start with '#'.
func parseTable(name string, r io.Reader) (*Table, error) {
	t := &Table{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected 2 fields, got %d", name, line, len(fields))
		}
		energyEV, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad energy: %w", name, line, err)
		}
		coeff, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad coefficient: %w", name, line, err)
		}
		t.EnergiesEV = append(t.EnergiesEV, energyEV)
		t.Coeffs = append(t.Coeffs, coeff)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}

	// Strict: a duplicated energy would make log-log interpolation
	// divide by zero.
	for i := 1; i < len(t.EnergiesEV); i++ {
		if t.EnergiesEV[i] <= t.EnergiesEV[i-1] {
			return nil, fmt.Errorf("table %s: energies not strictly increasing at index %d (%g after %g)",
				name, i, t.EnergiesEV[i], t.EnergiesEV[i-1])
		}
	}
	return t, nil
}

// Lookup returns the coefficient at the tabulated energy closest to
// energyEV.
func (t *Table) Lookup(energyEV float64) float64 {
	i := sort.SearchFloat64s(t.EnergiesEV, energyEV)
	if i == 0 {
		return t.Coeffs[0]
	}
	if i == len(t.EnergiesEV) {
		return t.Coeffs[len(t.Coeffs)-1]
	}
	if energyEV-t.EnergiesEV[i-1] <= t.EnergiesEV[i]-energyEV {
		return t.Coeffs[i-1]
	}
	return t.Coeffs[i]
}

// Interpolate returns the log-log interpolated coefficient at
// energyEV. Energies outside the table clamp to the end values, the
// convention reference implementations use for these curves.
func (t *Table) Interpolate(energyEV float64) float64 {
	n := len(t.EnergiesEV)
	if energyEV <= t.EnergiesEV[0] {
		return t.Coeffs[0]
	}
	if energyEV >= t.EnergiesEV[n-1] {
		return t.Coeffs[n-1]
	}
	i := sort.SearchFloat64s(t.EnergiesEV, energyEV)
	e0, e1 := t.EnergiesEV[i-1], t.EnergiesEV[i]
	c0, c1 := t.Coeffs[i-1], t.Coeffs[i]
	frac := (math.Log(energyEV) - math.Log(e0)) / (math.Log(e1) - math.Log(e0))
	return math.Exp(math.Log(c0) + frac*(math.Log(c1)-math.Log(c0)))
}
