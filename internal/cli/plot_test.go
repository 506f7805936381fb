package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlotGeometryCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "geometry.png")

	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"plot", "geometry", "-o", out, "--pixels", "32"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("plot geometry failed: %v", err)
	}
	if !strings.Contains(buf.String(), "wrote "+out) {
		t.Errorf("unexpected output: %q", buf.String())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("image width = %d, want 32", img.Bounds().Dx())
	}
}

func TestPlotCoefficientsCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "coeffs.png")

	cmd := NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"plot", "coefficients", "-o", out})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("plot coefficients failed: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}
