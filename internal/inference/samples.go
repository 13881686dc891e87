package inference

import (
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/params"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/samples"
)

// Samples returns the posterior sample table. The table is materialized
// from the raw chain on first access and cached; the cache is invalidated
// only by a new sampling run or a fresh load. ErrNoSamples is returned when
// no sampling run or load has happened yet.
func (e *Engine) Samples() (*samples.Table, error) {
	if e.sampleTable != nil {
		return e.sampleTable, nil
	}
	if e.flatChain == nil {
		return nil, ErrNoSamples
	}
	table, err := samples.FromFlatChain(params.Names(e.LightCurve().NPlanets()), e.flatChain)
	if err != nil {
		return nil, err
	}
	e.sampleTable = table
	return e.sampleTable, nil
}

// SetSamples replaces the engine's posterior sample table, as done when
// restoring a persisted fit. The raw chain is discarded; the table is the
// source of truth from here on.
func (e *Engine) SetSamples(t *samples.Table) {
	e.sampleTable = t
	e.flatChain = nil
}
