package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/tmadell/gdose/internal/model"
)

// SlicePlane selects which coordinate plane a geometry slice cuts.
type SlicePlane string

const (
	PlaneXY SlicePlane = "xy"
	PlaneXZ SlicePlane = "xz"
	PlaneYZ SlicePlane = "yz"
)

// SliceSpec configures a geometry slice raster.
type SliceSpec struct {
	// Plane is the cut plane; Offset is the fixed third coordinate.
	Plane  SlicePlane
	Offset float64

	// Center and HalfExtent frame the slice in cm. Zero values frame
	// the model's boundary sphere.
	Center     [2]float64
	HalfExtent float64

	// Pixels is the image edge length (default 400).
	Pixels int
}

// background marks undefined space. Gaps in the cell tiling show up
// as background bleeding through where a cell color should be.
var background = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}

// cellPalette colors cells by declaration order.
var cellPalette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
}

// plotutilColor exposes the palette for other renderers in this
// package.
func plotutilColor(i int) color.RGBA {
	return cellPalette[i%len(cellPalette)]
}

// GeometrySlice rasterizes a 2D slice of the model and writes it as a
// PNG. Each pixel is classified against the cells in declaration
// order, so the image shows exactly what the transport engine would
// see on that plane, including unassigned space.
func GeometrySlice(w io.Writer, m *model.Model, spec SliceSpec) error {
	// A one-pixel image would divide by n-1 below.
	if spec.Pixels < 2 {
		spec.Pixels = 400
	}
	if spec.Plane == "" {
		spec.Plane = PlaneXZ
	}
	if spec.HalfExtent <= 0 {
		if m.Boundary == nil {
			return fmt.Errorf("geometry slice: no extent given and model has no boundary sphere")
		}
		spec.HalfExtent = m.Boundary.R * 1.05
		switch spec.Plane {
		case PlaneXY:
			spec.Center = [2]float64{m.Boundary.Center.X, m.Boundary.Center.Y}
		case PlaneXZ:
			spec.Center = [2]float64{m.Boundary.Center.X, m.Boundary.Center.Z}
		case PlaneYZ:
			spec.Center = [2]float64{m.Boundary.Center.Y, m.Boundary.Center.Z}
		default:
			return fmt.Errorf("geometry slice: unknown plane %q", spec.Plane)
		}
	}

	n := spec.Pixels
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for py := 0; py < n; py++ {
		for px := 0; px < n; px++ {
			// Vertical axis grows upward in the plot, downward in the
			// image.
			u := spec.Center[0] + spec.HalfExtent*(2*float64(px)/float64(n-1)-1)
			v := spec.Center[1] + spec.HalfExtent*(1-2*float64(py)/float64(n-1))
			p, err := slicePoint(spec.Plane, u, v, spec.Offset)
			if err != nil {
				return err
			}
			img.SetRGBA(px, py, classify(m, p))
		}
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("geometry slice: encode: %w", err)
	}
	return nil
}

func slicePoint(plane SlicePlane, u, v, offset float64) (model.Point, error) {
	switch plane {
	case PlaneXY:
		return model.Point{X: u, Y: v, Z: offset}, nil
	case PlaneXZ:
		return model.Point{X: u, Y: offset, Z: v}, nil
	case PlaneYZ:
		return model.Point{X: offset, Y: u, Z: v}, nil
	default:
		return model.Point{}, fmt.Errorf("geometry slice: unknown plane %q", plane)
	}
}

func classify(m *model.Model, p model.Point) color.RGBA {
	for i, c := range m.Cells {
		if c.Region.Contains(p) {
			return cellPalette[i%len(cellPalette)]
		}
	}
	return background
}
