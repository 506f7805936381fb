package icrp

import (
	"errors"
	"sort"
	"strings"
	"testing"
)

func TestCoefficients_PhotonAP(t *testing.T) {
	table, err := Coefficients(Photon, AP)
	if err != nil {
		t.Fatalf("Coefficients() failed: %v", err)
	}

	if len(table.EnergiesEV) == 0 {
		t.Fatal("empty table")
	}
	if len(table.EnergiesEV) != len(table.Coeffs) {
		t.Fatalf("energies (%d) and coefficients (%d) are not parallel",
			len(table.EnergiesEV), len(table.Coeffs))
	}
	if !sort.Float64sAreSorted(table.EnergiesEV) {
		t.Error("energies must be increasing")
	}
	for i, c := range table.Coeffs {
		if c <= 0 {
			t.Errorf("coefficient[%d] = %g, want positive", i, c)
		}
	}
}

func TestCoefficients_NeutronAP(t *testing.T) {
	table, err := Coefficients(Neutron, AP)
	if err != nil {
		t.Fatalf("Coefficients() failed: %v", err)
	}
	if len(table.EnergiesEV) != len(table.Coeffs) {
		t.Fatal("energies and coefficients are not parallel")
	}
}

func TestCoefficients_Unsupported(t *testing.T) {
	_, err := Coefficients(Photon, Geometry("PA"))
	var ue *UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedError, got %v", err)
	}

	_, err = Coefficients(Particle("electron"), AP)
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedError, got %v", err)
	}
}

func TestParseTable_StrictlyIncreasing(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"duplicate energy", "10000,0.1\n10000,0.2\n20000,0.3\n"},
		{"decreasing energy", "10000,0.1\n20000,0.2\n15000,0.3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTable("test.csv", strings.NewReader(tt.csv))
			if err == nil {
				t.Fatal("expected error for non-increasing energies")
			}
			if !strings.Contains(err.Error(), "strictly increasing") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseTable_BadRow(t *testing.T) {
	if _, err := parseTable("test.csv", strings.NewReader("10000,0.1,extra\n")); err == nil {
		t.Error("expected error for wrong field count")
	}
	if _, err := parseTable("test.csv", strings.NewReader("abc,0.1\n")); err == nil {
		t.Error("expected error for non-numeric energy")
	}
}

// The coefficient near the Co-60 average line energy (1.25 MeV) must
// be a few pSv·cm².
func TestLookup_Co60Average(t *testing.T) {
	table, err := Coefficients(Photon, AP)
	if err != nil {
		t.Fatal(err)
	}

	c := table.Lookup(1.25e6)
	if c < 3 || c > 8 {
		t.Errorf("Lookup(1.25 MeV) = %g pSv·cm², want a few units", c)
	}
}

func TestLookup_PicksNearest(t *testing.T) {
	table, err := Coefficients(Photon, AP)
	if err != nil {
		t.Fatal(err)
	}

	// 1.25 MeV sits between 1.117 and 1.33 MeV; 1.33 is nearer.
	if got := table.Lookup(1.25e6); got != 5.59 {
		t.Errorf("Lookup(1.25e6) = %g, want 5.59", got)
	}
	// Exact table energies return their own value.
	if got := table.Lookup(1e6); got != 4.49 {
		t.Errorf("Lookup(1e6) = %g, want 4.49", got)
	}
	// Below and above the table clamp to the ends.
	if got := table.Lookup(1); got != table.Coeffs[0] {
		t.Errorf("Lookup(1) = %g, want first coefficient", got)
	}
	if got := table.Lookup(1e12); got != table.Coeffs[len(table.Coeffs)-1] {
		t.Errorf("Lookup(1e12) = %g, want last coefficient", got)
	}
}

func TestInterpolate(t *testing.T) {
	table, err := Coefficients(Photon, AP)
	if err != nil {
		t.Fatal(err)
	}

	// Interpolation between neighbors stays between their values.
	got := table.Interpolate(1.25e6)
	if got <= 4.90 || got >= 5.59 {
		t.Errorf("Interpolate(1.25e6) = %g, want between 4.90 and 5.59", got)
	}

	// Table points reproduce exactly (modulo float round trip).
	if got := table.Interpolate(1e6); got < 4.489 || got > 4.491 {
		t.Errorf("Interpolate(1e6) = %g, want 4.49", got)
	}

	// Out-of-range clamps.
	if got := table.Interpolate(1); got != table.Coeffs[0] {
		t.Errorf("Interpolate below table = %g, want first coefficient", got)
	}
}
