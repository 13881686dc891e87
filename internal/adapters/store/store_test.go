package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaeedTaghavi/transit-fitting/internal/adapters/store"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
	"github.com/SaeedTaghavi/transit-fitting/internal/inference"
	"github.com/SaeedTaghavi/transit-fitting/internal/simulate"
)

// sampledEngine builds a small fitted engine with posterior draws attached.
func sampledEngine(t *testing.T) *inference.Engine {
	t.Helper()

	gen := simulate.New(simulate.WithSeed(21), simulate.WithSpan(6))
	lc, err := gen.LightCurve([]simulate.Planet{{
		Planet: lightcurve.Planet{
			Name:      "b",
			Period:    3.0,
			PeriodErr: 0.01,
			Epoch:     0.5,
			EpochErr:  0.01,
			Duration:  0.1,
		},
		Depth: 0.01,
	}})
	require.NoError(t, err)

	eng, err := inference.New(lc,
		inference.WithWalkers(22),
		inference.WithBurn(1),
		inference.WithIters(2),
		inference.WithSeed(13),
		inference.WithWidth(1.5),
	)
	require.NoError(t, err)
	require.NoError(t, eng.Sample(context.Background(), nil))
	return eng
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	eng := sampledEngine(t)
	path := filepath.Join(t.TempDir(), "fit.db")
	st := store.New(path)

	require.NoError(t, st.Save(ctx, eng, "", store.SaveOptions{}))

	loaded, err := st.Load(ctx, "")
	require.NoError(t, err)

	want, err := eng.Samples()
	require.NoError(t, err)
	got, err := loaded.Samples()
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "sample tables must round-trip")

	assert.Equal(t, eng.Width(), loaded.Width())
	assert.Equal(t, eng.ContinuumMethod(), loaded.ContinuumMethod())
	assert.Equal(t, eng.LightCurve().Texp(), loaded.LightCurve().Texp())
	assert.Equal(t, eng.LightCurve().Planets(), loaded.LightCurve().Planets())
	assert.Equal(t, eng.LightCurve().Flux(), loaded.LightCurve().Flux())
	assert.Equal(t, eng.LightCurve().FluxErr(), loaded.LightCurve().FluxErr())

	// Point estimates are never persisted.
	_, err = loaded.BestFit()
	assert.ErrorIs(t, err, inference.ErrNoFit)
}

func TestSaveRequiresSamples(t *testing.T) {
	lc, err := lightcurve.New([]float64{0, 1, 2}, []float64{1, 1, 1}, nil)
	require.NoError(t, err)
	eng, err := inference.New(lc)
	require.NoError(t, err)

	st := store.New(filepath.Join(t.TempDir(), "fit.db"))
	err = st.Save(context.Background(), eng, "", store.SaveOptions{})
	assert.ErrorIs(t, err, inference.ErrNoSamples)
}

func TestSaveConflictPolicies(t *testing.T) {
	ctx := context.Background()
	eng := sampledEngine(t)
	path := filepath.Join(t.TempDir(), "fit.db")
	st := store.New(path)

	require.NoError(t, st.Save(ctx, eng, "first", store.SaveOptions{}))

	t.Run("same prefix without a policy fails", func(t *testing.T) {
		err := st.Save(ctx, eng, "first", store.SaveOptions{})
		assert.ErrorIs(t, err, store.ErrPathExists)
	})

	t.Run("a new prefix appends without flags", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, eng, "second", store.SaveOptions{}))
		_, err := st.Load(ctx, "first")
		assert.NoError(t, err)
		_, err = st.Load(ctx, "second")
		assert.NoError(t, err)
	})

	t.Run("append replaces only its prefix", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, eng, "second", store.SaveOptions{Append: true}))
		_, err := st.Load(ctx, "first")
		assert.NoError(t, err)
		_, err = st.Load(ctx, "second")
		assert.NoError(t, err)
	})

	t.Run("overwrite discards the whole file", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, eng, "first", store.SaveOptions{Overwrite: true}))
		_, err := st.Load(ctx, "first")
		assert.NoError(t, err)
		_, err = st.Load(ctx, "second")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLoadMissing(t *testing.T) {
	ctx := context.Background()

	st := store.New(filepath.Join(t.TempDir(), "absent.db"))
	_, err := st.Load(ctx, "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	eng := sampledEngine(t)
	path := filepath.Join(t.TempDir(), "fit.db")
	st = store.New(path)
	require.NoError(t, st.Save(ctx, eng, "", store.SaveOptions{}))

	_, err = st.Load(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBadPrefix(t *testing.T) {
	ctx := context.Background()
	st := store.New(filepath.Join(t.TempDir(), "fit.db"))

	for _, prefix := range []string{"1bad", "no-dash", "sp ace", "semi;colon"} {
		_, err := st.Load(ctx, prefix)
		assert.ErrorIs(t, err, store.ErrBadPrefix, prefix)
	}
}
