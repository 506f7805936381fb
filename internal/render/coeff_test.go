package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/tmadell/gdose/internal/icrp"
)

func TestCoefficientPlot(t *testing.T) {
	photon, err := icrp.Coefficients(icrp.Photon, icrp.AP)
	if err != nil {
		t.Fatal(err)
	}
	neutron, err := icrp.Coefficients(icrp.Neutron, icrp.AP)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "coeffs.png")
	if err := CoefficientPlot(path, photon, neutron); err != nil {
		t.Fatalf("CoefficientPlot() failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("plot file missing: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("plot is not a decodable PNG: %v", err)
	}
}

func TestCoefficientPlot_NoTables(t *testing.T) {
	if err := CoefficientPlot(filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("expected error with no tables")
	}
}
