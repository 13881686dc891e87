package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/samples"
	"github.com/SaeedTaghavi/transit-fitting/internal/inference"
	"github.com/SaeedTaghavi/transit-fitting/pkg/logger"
	"github.com/SaeedTaghavi/transit-fitting/pkg/metrics"
)

// Load reads a saved fit from the given path segment: the observation series
// is reconstructed first, then an inference engine is built with the saved
// configuration and its posterior samples pre-populated. Point estimates are
// never persisted, so the loaded engine has none.
func (s *Store) Load(ctx context.Context, prefix string, opts ...inference.Option) (*inference.Engine, error) {
	prefix, err := normalizePrefix(prefix)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	db, err := s.open()
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}
	defer db.Close()

	exists, err := hasPrefix(db, prefix)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, prefix, s.path)
	}

	lc, err := readLightCurve(ctx, db, prefix)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}
	meta, err := readMeta(ctx, db, prefix)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}
	table, err := readSamples(ctx, db, prefix)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	engineOpts := []inference.Option{
		inference.WithWidth(meta.width),
		inference.WithContinuumMethod(meta.continuumMethod),
	}
	engineOpts = append(engineOpts, opts...)
	eng, err := inference.New(lc, engineOpts...)
	if err != nil {
		return nil, err
	}
	eng.SetSamples(table)

	metrics.RecordStoreLoad()
	s.log.Info(ctx, "fit loaded",
		logger.String("file", s.path),
		logger.String("prefix", prefix),
		logger.Int("draws", table.Len()),
	)
	return eng, nil
}

type fitMeta struct {
	width           float64
	continuumMethod string
	lcType          string
	texp            float64
}

func readMeta(ctx context.Context, db *sql.DB, prefix string) (fitMeta, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT key, value FROM %q`, prefix+"_meta"))
	if err != nil {
		return fitMeta{}, fmt.Errorf("read meta: %w", err)
	}
	defer rows.Close()

	kv := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fitMeta{}, fmt.Errorf("scan meta: %w", err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return fitMeta{}, fmt.Errorf("read meta: %w", err)
	}

	m := fitMeta{continuumMethod: kv["continuum_method"], lcType: kv["lc_type"]}
	if m.width, err = strconv.ParseFloat(kv["width"], 64); err != nil {
		return fitMeta{}, fmt.Errorf("parse width %q: %w", kv["width"], err)
	}
	if kv["texp"] != "" {
		if m.texp, err = strconv.ParseFloat(kv["texp"], 64); err != nil {
			return fitMeta{}, fmt.Errorf("parse texp %q: %w", kv["texp"], err)
		}
	}
	return m, nil
}

func readSamples(ctx context.Context, db *sql.DB, prefix string) (*samples.Table, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %q ORDER BY rowid`, prefix+"_samples"))
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sample columns: %w", err)
	}
	cols := make([][]float64, len(names))
	vals := make([]float64, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		for i, v := range vals {
			cols[i] = append(cols[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	return samples.New(names, cols)
}

func readLightCurve(ctx context.Context, db *sql.DB, prefix string) (*lightcurve.LightCurve, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(
		`SELECT time, flux, flux_err, masked FROM %q ORDER BY idx`, prefix+"_lightcurve"))
	if err != nil {
		return nil, fmt.Errorf("read lightcurve: %w", err)
	}
	defer rows.Close()

	var times, flux, fluxErr []float64
	var mask []bool
	for rows.Next() {
		var t, f, fe float64
		var m int
		if err := rows.Scan(&t, &f, &fe, &m); err != nil {
			return nil, fmt.Errorf("scan lightcurve row: %w", err)
		}
		times = append(times, t)
		flux = append(flux, f)
		fluxErr = append(fluxErr, fe)
		mask = append(mask, m != 0)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read lightcurve: %w", err)
	}

	planets, err := readPlanets(ctx, db, prefix)
	if err != nil {
		return nil, err
	}

	var texp float64
	if meta, err := readMeta(ctx, db, prefix); err == nil {
		texp = meta.texp
	}

	// The stored flux is already the working series; never re-detrend it.
	opts := []lightcurve.Option{
		lightcurve.WithMask(mask),
		lightcurve.WithPlanets(planets...),
		lightcurve.WithoutDetrend(),
	}
	if texp > 0 {
		opts = append(opts, lightcurve.WithTexp(texp))
	}
	return lightcurve.New(times, flux, fluxErr, opts...)
}

func readPlanets(ctx context.Context, db *sql.DB, prefix string) ([]lightcurve.Planet, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(
		`SELECT name, period, period_err, epoch, epoch_err, duration FROM %q ORDER BY idx`,
		prefix+"_planets"))
	if err != nil {
		return nil, fmt.Errorf("read planets: %w", err)
	}
	defer rows.Close()

	var planets []lightcurve.Planet
	for rows.Next() {
		var p lightcurve.Planet
		if err := rows.Scan(&p.Name, &p.Period, &p.PeriodErr, &p.Epoch, &p.EpochErr, &p.Duration); err != nil {
			return nil, fmt.Errorf("scan planet: %w", err)
		}
		planets = append(planets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read planets: %w", err)
	}
	return planets, nil
}
