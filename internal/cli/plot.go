package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmadell/gdose/internal/icrp"
	"github.com/tmadell/gdose/internal/render"
)

// PlotOptions holds flags for the plot subcommands.
type PlotOptions struct {
	*RootOptions
	Output string

	// geometry slice flags
	Plane  string
	Offset float64
	Pixels int
}

// NewPlotCommand creates the plot command group.
func NewPlotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render inspection plots (dose coefficients, geometry slice)",
	}

	coeff := &cobra.Command{
		Use:   "coefficients",
		Short: "Plot the photon and neutron dose-coefficient curves",
		Long: `Render the ICRP-116 effective-dose conversion coefficient curves for
photons and neutrons (AP geometry) on log-log axes. Inspection only;
nothing downstream consumes the image.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlotCoefficients(opts, cmd)
		},
	}
	coeff.Flags().StringVarP(&opts.Output, "output", "o", "dose_coefficients.png", "output PNG path")

	geom := &cobra.Command{
		Use:   "geometry [scenario-dir]",
		Short: "Render a 2D slice of the scenario geometry",
		Long: `Rasterize a slice of the transport geometry, one color per cell.
Unassigned space shows as light gray: a gray gap inside the boundary
sphere means the cells do not tile and particles would be lost there.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runPlotGeometry(opts, dir, cmd)
		},
	}
	geom.Flags().StringVarP(&opts.Output, "output", "o", "geometry.png", "output PNG path")
	geom.Flags().StringVar(&opts.Plane, "plane", "xz", "slice plane (xy|xz|yz)")
	geom.Flags().Float64Var(&opts.Offset, "offset", 0, "fixed coordinate of the slice plane in cm")
	geom.Flags().IntVar(&opts.Pixels, "pixels", 400, "image edge length in pixels")

	cmd.AddCommand(coeff)
	cmd.AddCommand(geom)
	return cmd
}

func runPlotCoefficients(opts *PlotOptions, cmd *cobra.Command) error {
	photon, err := icrp.Coefficients(icrp.Photon, icrp.AP)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load photon coefficients", err)
	}
	neutron, err := icrp.Coefficients(icrp.Neutron, icrp.AP)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load neutron coefficients", err)
	}

	if err := render.CoefficientPlot(opts.Output, photon, neutron); err != nil {
		return WrapExitError(ExitFailure, "failed to render coefficient plot", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.Output)
	return nil
}

func runPlotGeometry(opts *PlotOptions, dir string, cmd *cobra.Command) error {
	s, err := loadScenario(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	m, err := s.BuildModel()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build model", err)
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	defer out.Close()

	spec := render.SliceSpec{
		Plane:  render.SlicePlane(opts.Plane),
		Offset: opts.Offset,
		Pixels: opts.Pixels,
	}
	if err := render.GeometrySlice(out, m, spec); err != nil {
		return WrapExitError(ExitFailure, "failed to render geometry slice", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.Output)
	return nil
}
