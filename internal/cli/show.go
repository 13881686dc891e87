package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SaeedTaghavi/transit-fitting/internal/adapters/plot"
	"github.com/SaeedTaghavi/transit-fitting/internal/adapters/store"
)

// Summary quantiles: median with a 1-sigma-equivalent band.
var summaryQuantiles = []float64{0.16, 0.5, 0.84}

func newShowCmd(st *state) *cobra.Command {
	var (
		path     string
		withPlot bool
	)
	cmd := &cobra.Command{
		Use:   "show <fit.db>",
		Short: "Print a posterior summary of a saved fit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := store.New(args[0]).Load(ctx, path, st.cfg.EngineOptions()...)
			if err != nil {
				return err
			}
			table, err := eng.Samples()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d draws\n", table.Len())
			fmt.Fprintf(out, "%-12s %12s %12s %12s\n", "parameter", "p16", "median", "p84")
			median := make([]float64, 0, len(table.Names()))
			for _, name := range table.Names() {
				qs := make([]float64, len(summaryQuantiles))
				for i, q := range summaryQuantiles {
					v, err := table.Quantile(name, q)
					if err != nil {
						return err
					}
					qs[i] = v
				}
				median = append(median, qs[1])
				fmt.Fprintf(out, "%-12s %12.6g %12.6g %12.6g\n", name, qs[0], qs[1], qs[2])
			}

			if !withPlot {
				return nil
			}
			plot.Register(plot.NewASCIIRenderer())
			folds, err := plot.BuildFolds(eng, median, eng.Width())
			if err != nil {
				return err
			}
			return plot.Render(out, folds)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path segment within the file")
	cmd.Flags().BoolVar(&withPlot, "plot", false, "render phase-folded overlays for the median parameters")
	return cmd
}
