package plot

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// ASCII canvas dimensions.
const (
	asciiCols = 72
	asciiRows = 20
)

// ASCIIRenderer draws folds as fixed-size text panels: observed points as
// dots, model points as asterisks, depth increasing downward.
type ASCIIRenderer struct{}

// NewASCIIRenderer creates the text renderer.
func NewASCIIRenderer() *ASCIIRenderer { return &ASCIIRenderer{} }

// RenderFold draws one candidate's fold.
func (r *ASCIIRenderer) RenderFold(w io.Writer, f Fold) error {
	if len(f.FoldedHours) == 0 {
		_, err := fmt.Fprintf(w, "%s: no points in transit window\n", f.Name)
		return err
	}

	xmin, xmax := minMax(f.FoldedHours)
	ymin, ymax := minMax(append(append([]float64(nil), f.ObservedPPM...), f.ModelPPM...))
	if xmax == xmin {
		xmax = xmin + 1
	}
	if ymax == ymin {
		ymax = ymin + 1
	}

	grid := make([][]byte, asciiRows)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", asciiCols))
	}
	put := func(x, y float64, ch byte) {
		c := int((x - xmin) / (xmax - xmin) * float64(asciiCols-1))
		row := int((y - ymin) / (ymax - ymin) * float64(asciiRows-1))
		if c < 0 || c >= asciiCols || row < 0 || row >= asciiRows {
			return
		}
		grid[row][c] = ch
	}
	for i := range f.FoldedHours {
		put(f.FoldedHours[i], f.ObservedPPM[i], '.')
	}
	for i := range f.FoldedHours {
		put(f.FoldedHours[i], f.ModelPPM[i], '*')
	}

	if _, err := fmt.Fprintf(w, "%s  depth [%.0f, %.0f] ppm, fold [%.2f, %.2f] h\n",
		f.Name, ymin, ymax, xmin, xmax); err != nil {
		return err
	}
	for _, row := range grid {
		if _, err := fmt.Fprintf(w, "|%s|\n", row); err != nil {
			return err
		}
	}
	return nil
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
