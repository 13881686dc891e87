package cli

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/SaeedTaghavi/transit-fitting/internal/adapters/store"
)

func newExportCmd(st *state) *cobra.Command {
	var (
		path string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export <fit.db>",
		Short: "Dump a saved fit's posterior samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := store.New(args[0]).Load(cmd.Context(), path, st.cfg.EngineOptions()...)
			if err != nil {
				return err
			}
			table, err := eng.Samples()
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			cw := csv.NewWriter(w)
			if err := cw.Write(table.Names()); err != nil {
				return err
			}
			rec := make([]string, len(table.Names()))
			for r := 0; r < table.Len(); r++ {
				for i, v := range table.Row(r) {
					rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path segment within the file")
	cmd.Flags().StringVar(&out, "out", "", "write CSV here instead of stdout")
	return cmd
}
