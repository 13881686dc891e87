package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/params"
	"github.com/SaeedTaghavi/transit-fitting/internal/inference"
)

func newFitCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "fit <lightcurve.csv>",
		Short: "Run a local maximum-posterior fit and print the best vector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(st, args[0])
			if err != nil {
				return err
			}
			best, err := eng.FitLocal(cmd.Context(), eng.DefaultParams().Vector())
			if err != nil {
				return err
			}
			names := params.Names(eng.LightCurve().NPlanets())
			for i, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %.8g\n", name, best[i])
			}
			return nil
		},
	}
}

// buildEngine loads a light curve CSV, attaches the configured candidates,
// and assembles an inference engine from the configuration.
func buildEngine(st *state, csvPath string) (*inference.Engine, error) {
	planets := st.cfg.LightCurvePlanets()
	if len(planets) == 0 {
		return nil, fmt.Errorf("no planets configured: add a planets block to the config")
	}
	lc, err := lightcurve.FromCSV(csvPath, lightcurve.WithPlanets(planets...))
	if err != nil {
		return nil, err
	}
	return inference.New(lc, st.cfg.EngineOptions()...)
}
