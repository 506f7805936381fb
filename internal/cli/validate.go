package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmadell/gdose/internal/model"
	"github.com/tmadell/gdose/internal/scenario"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	TilingSamples int
}

// ValidationReport is the JSON payload of validate.
type ValidationReport struct {
	Scenario string          `json:"scenario"`
	Valid    bool            `json:"valid"`
	Findings []model.Finding `json:"findings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [scenario-dir]",
		Short: "Validate a scenario without running the engine",
		Long: `Compile the scenario, build the transport model, and report every
validation finding: structural errors (duplicate ids, dangling
references, bad values) and warnings (source position outside cells,
marker/source disagreement, sampled tiling gaps).

Warnings do not fail validation; they flag likely mistakes whose
intent is ambiguous. In particular a marker sphere that does not
contain the source is reported, never silently moved.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(opts, dir, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.TilingSamples, "tiling-samples", 20,
		"grid points per axis for the sampled tiling check (0 disables)")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	// Unlike run, validation is diagnostic: collect every load problem
	// instead of stopping at the first.
	var s *scenario.Scenario
	if dir == "" {
		s = scenario.Default()
	} else {
		var errs []error
		s, errs = scenario.LoadScenario(dir, scenario.LoadModeCollectAll)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return WrapExitError(ExitCommandError,
				fmt.Sprintf("failed to load scenario (%d problems)", len(errs)), errs[0])
		}
	}

	m, err := s.BuildModel()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build model", err)
	}

	findings := m.Validate()
	if opts.TilingSamples > 1 {
		findings = append(findings, m.SampleTiling(opts.TilingSamples)...)
	}

	valid := model.Runnable(findings)
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	if opts.Format == "json" {
		if err := f.Success(ValidationReport{Scenario: s.Name, Valid: valid, Findings: findings}); err != nil {
			return err
		}
	} else {
		for _, finding := range findings {
			fmt.Fprintln(cmd.OutOrStdout(), finding)
		}
		if valid {
			fmt.Fprintf(cmd.OutOrStdout(), "scenario %s: model is valid (%d findings)\n", s.Name, len(findings))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "scenario %s: model is INVALID\n", s.Name)
		}
	}

	if !valid {
		return NewExitError(ExitFailure, "model validation failed")
	}
	return nil
}
