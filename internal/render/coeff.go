// Package render produces the two inspection artifacts of an
// analysis: the dose-coefficient curves and a 2D slice of the
// geometry. Both are side effects for human eyes; nothing downstream
// consumes them.
package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tmadell/gdose/internal/icrp"
)

// CoefficientPlot renders one or more dose-coefficient curves on
// shared log-log axes and saves a PNG at path.
func CoefficientPlot(path string, tables ...*icrp.Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("coefficient plot: no tables")
	}

	p := plot.New()
	p.Title.Text = "Effective dose per fluence (AP)"
	p.X.Label.Text = "Energy (eV)"
	p.Y.Label.Text = "Dose coefficient (pSv cm²)"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Legend.Top = true
	p.Legend.Left = true

	for i, t := range tables {
		pts := make(plotter.XYs, len(t.EnergiesEV))
		for j := range t.EnergiesEV {
			pts[j].X = t.EnergiesEV[j]
			pts[j].Y = t.Coeffs[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("coefficient plot: %w", err)
		}
		line.Color = plotutilColor(i)
		p.Add(line)
		p.Legend.Add(string(t.Particle), line)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("coefficient plot: save %s: %w", path, err)
	}
	return nil
}
