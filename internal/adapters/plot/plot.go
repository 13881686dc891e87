// Package plot renders phase-folded transit overlays. Rendering is an
// optional capability: a Renderer must be registered before use, and the
// absence of one surfaces as ErrUnavailable at the call site, never at
// startup.
package plot

import (
	"errors"
	"io"
	"sync"

	"github.com/SaeedTaghavi/transit-fitting/internal/inference"
)

// ErrUnavailable is returned when plotting is requested but no renderer has
// been registered.
var ErrUnavailable = errors.New("plotting unavailable: register a plot.Renderer first")

// Fold is one candidate's phase-folded near-transit selection, the unit
// handed to renderers.
type Fold struct {
	Name        string
	FoldedHours []float64 // time from transit center, hours
	ObservedPPM []float64 // observed depth, parts per million
	ModelPPM    []float64 // model depth, parts per million
}

// Renderer draws folds to a writer.
type Renderer interface {
	RenderFold(w io.Writer, f Fold) error
}

var (
	mu       sync.RWMutex
	renderer Renderer
)

// Register installs the process-wide renderer.
func Register(r Renderer) {
	mu.Lock()
	defer mu.Unlock()
	renderer = r
}

// Render draws all folds with the registered renderer, or reports
// ErrUnavailable when none is installed.
func Render(w io.Writer, folds []Fold) error {
	mu.RLock()
	r := renderer
	mu.RUnlock()
	if r == nil {
		return ErrUnavailable
	}
	for _, f := range folds {
		if err := r.RenderFold(w, f); err != nil {
			return err
		}
	}
	return nil
}

// BuildFolds evaluates the model at v and assembles per-candidate folds.
// Window widths are scaled per candidate so all panels span comparable
// fractions of their transit durations.
func BuildFolds(eng *inference.Engine, v []float64, width float64) ([]Fold, error) {
	predicted, err := eng.Model().Evaluate(v)
	if err != nil {
		return nil, err
	}
	lc := eng.LightCurve()
	flux := lc.Flux()

	maxDur := 0.0
	for _, p := range lc.Planets() {
		if p.Duration > maxDur {
			maxDur = p.Duration
		}
	}

	var folds []Fold
	for i, p := range lc.Planets() {
		w := width
		if maxDur > 0 && p.Duration > 0 {
			w = width / (p.Duration / maxDur)
		}
		close := lc.Close(i, w)
		folded := lc.FoldedTime(i)

		f := Fold{Name: p.Name}
		for j, c := range close {
			if !c {
				continue
			}
			f.FoldedHours = append(f.FoldedHours, folded[j]*24)
			f.ObservedPPM = append(f.ObservedPPM, (1-flux[j])*1e6)
			f.ModelPPM = append(f.ModelPPM, (1-predicted[j])*1e6)
		}
		folds = append(folds, f)
	}
	return folds, nil
}
