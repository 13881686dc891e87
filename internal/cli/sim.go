package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SaeedTaghavi/transit-fitting/internal/simulate"
)

func newSimCmd(st *state) *cobra.Command {
	var (
		out     string
		span    float64
		cadence float64
		noise   float64
		depth   float64
		seed    int64
	)
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Generate a synthetic light curve CSV from the configured planets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPlanets := st.cfg.LightCurvePlanets()
			if len(cfgPlanets) == 0 {
				return fmt.Errorf("no planets configured: add a planets block to the config")
			}
			planets := make([]simulate.Planet, len(cfgPlanets))
			for i, p := range cfgPlanets {
				planets[i] = simulate.Planet{Planet: p, Depth: depth}
			}

			gen := simulate.New(
				simulate.WithSpan(span),
				simulate.WithCadence(cadence),
				simulate.WithNoise(noise),
				simulate.WithSeed(seed),
			)
			lc, err := gen.LightCurve(planets)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			return simulate.WriteCSV(f, lc)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "CSV file to write")
	cmd.Flags().Float64Var(&span, "span", 30, "observation span in days")
	cmd.Flags().Float64Var(&cadence, "cadence", 0.02, "time spacing in days")
	cmd.Flags().Float64Var(&noise, "noise", 1e-4, "white-noise level in relative flux")
	cmd.Flags().Float64Var(&depth, "depth", 0.01, "injected transit depth")
	cmd.Flags().Int64Var(&seed, "seed", 42, "noise seed")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
