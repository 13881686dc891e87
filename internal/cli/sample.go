package cli

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/SaeedTaghavi/transit-fitting/internal/adapters/store"
	"github.com/SaeedTaghavi/transit-fitting/pkg/logger"
)

// Metrics server timeouts.
const (
	metricsReadTimeout  = 5 * time.Second
	metricsWriteTimeout = 10 * time.Second
)

func newSampleCmd(st *state) *cobra.Command {
	var (
		out         string
		path        string
		overwrite   bool
		appendFlag  bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "sample <lightcurve.csv>",
		Short: "Run ensemble posterior sampling and persist the draws",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := buildEngine(st, args[0])
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				srv := &http.Server{
					Addr:         metricsAddr,
					Handler:      mux,
					ReadTimeout:  metricsReadTimeout,
					WriteTimeout: metricsWriteTimeout,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Get().Warn(ctx, "metrics server stopped", logger.Error(err))
					}
				}()
				defer srv.Close()
			}

			if err := eng.Sample(ctx, nil); err != nil {
				return err
			}
			return store.New(out).Save(ctx, eng, path, store.SaveOptions{
				Overwrite: overwrite,
				Append:    appendFlag,
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "SQLite file to save the fit to")
	cmd.Flags().StringVar(&path, "path", "", "path segment within the file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace the whole file if the segment exists")
	cmd.Flags().BoolVar(&appendFlag, "append", false, "replace only the segment within the file")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address during the run")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
