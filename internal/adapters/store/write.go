package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/samples"
	"github.com/SaeedTaghavi/transit-fitting/internal/inference"
	"github.com/SaeedTaghavi/transit-fitting/pkg/logger"
	"github.com/SaeedTaghavi/transit-fitting/pkg/metrics"
)

// SaveOptions selects the conflict policy when the target path segment
// already holds a fit. With neither flag set such a save fails.
type SaveOptions struct {
	// Overwrite deletes the whole file before writing.
	Overwrite bool
	// Append replaces only the target path segment within the file.
	Append bool
}

// Save writes the engine's posterior sample table, its configuration
// scalars, and the observation series under the given path segment.
// Sampling must have run (or been loaded) first.
func (s *Store) Save(ctx context.Context, eng *inference.Engine, prefix string, opt SaveOptions) error {
	prefix, err := normalizePrefix(prefix)
	if err != nil {
		return err
	}
	table, err := eng.Samples()
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(s.path); statErr == nil {
		db, err := s.open()
		if err != nil {
			metrics.RecordStoreError()
			return err
		}
		exists, err := hasPrefix(db, prefix)
		if err != nil {
			db.Close()
			metrics.RecordStoreError()
			return err
		}
		if exists {
			switch {
			case opt.Overwrite:
				db.Close()
				if err := os.Remove(s.path); err != nil {
					metrics.RecordStoreError()
					return fmt.Errorf("remove %s: %w", s.path, err)
				}
			case opt.Append:
				if err := dropPrefix(db, prefix); err != nil {
					db.Close()
					metrics.RecordStoreError()
					return err
				}
				db.Close()
			default:
				db.Close()
				return fmt.Errorf("%w: %s in %s", ErrPathExists, prefix, s.path)
			}
		} else {
			db.Close()
		}
	}

	db, err := s.open()
	if err != nil {
		metrics.RecordStoreError()
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() // no-op once committed

	if err := writeSamples(ctx, tx, prefix, table); err != nil {
		metrics.RecordStoreError()
		return err
	}
	if err := writeMeta(ctx, tx, prefix, eng); err != nil {
		metrics.RecordStoreError()
		return err
	}
	// The observation series goes last, mirroring its loader/saver role as
	// the final step of a save.
	if err := writeLightCurve(ctx, tx, prefix, eng); err != nil {
		metrics.RecordStoreError()
		return err
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("commit save: %w", err)
	}
	metrics.RecordStoreSave()
	s.log.Info(ctx, "fit saved",
		logger.String("file", s.path),
		logger.String("prefix", prefix),
		logger.Int("draws", table.Len()),
	)
	return nil
}

func writeSamples(ctx context.Context, tx *sql.Tx, prefix string, table *samples.Table) error {
	names := table.Names()
	cols := make([]string, len(names))
	marks := make([]string, len(names))
	for i, n := range names {
		cols[i] = fmt.Sprintf("%q REAL", n)
		marks[i] = "?"
	}
	create := fmt.Sprintf(`CREATE TABLE %q (%s)`, prefix+"_samples", strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create samples table: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %q VALUES (%s)`, prefix+"_samples", strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare samples insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for r := 0; r < table.Len(); r++ {
		row := table.Row(r)
		for c, v := range row {
			args[c] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert sample row %d: %w", r, err)
		}
	}
	return nil
}

func writeMeta(ctx context.Context, tx *sql.Tx, prefix string, eng *inference.Engine) error {
	create := fmt.Sprintf(`CREATE TABLE %q (key TEXT PRIMARY KEY, value TEXT)`, prefix+"_meta")
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	insert := fmt.Sprintf(`INSERT INTO %q (key, value) VALUES (?, ?)`, prefix+"_meta")
	meta := map[string]string{
		"width":            fmt.Sprintf("%g", eng.Width()),
		"continuum_method": eng.ContinuumMethod(),
		"lc_type":          lcTypeTag,
		"texp":             fmt.Sprintf("%g", eng.LightCurve().Texp()),
		"save_id":          uuid.New().String(),
		"created_at":       time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, insert, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return nil
}

func writeLightCurve(ctx context.Context, tx *sql.Tx, prefix string, eng *inference.Engine) error {
	lc := eng.LightCurve()

	create := fmt.Sprintf(
		`CREATE TABLE %q (idx INTEGER PRIMARY KEY, time REAL, flux REAL, flux_err REAL, masked INTEGER)`,
		prefix+"_lightcurve",
	)
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create lightcurve table: %w", err)
	}
	insert := fmt.Sprintf(
		`INSERT INTO %q (idx, time, flux, flux_err, masked) VALUES (?, ?, ?, ?, ?)`,
		prefix+"_lightcurve",
	)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare lightcurve insert: %w", err)
	}
	defer stmt.Close()

	// The working (detrended) flux is persisted so the reloaded series
	// reproduces the fitted data exactly, independent of detrend settings.
	times := lc.RawTime()
	flux := lc.DetrendedFull()
	fluxErr := lc.FluxErrFull()
	mask := lc.Mask()
	for i := range times {
		m := 0
		if mask[i] {
			m = 1
		}
		if _, err := stmt.ExecContext(ctx, i, times[i], flux[i], fluxErr[i], m); err != nil {
			return fmt.Errorf("insert lightcurve row %d: %w", i, err)
		}
	}

	create = fmt.Sprintf(
		`CREATE TABLE %q (idx INTEGER PRIMARY KEY, name TEXT, period REAL, period_err REAL, epoch REAL, epoch_err REAL, duration REAL)`,
		prefix+"_planets",
	)
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create planets table: %w", err)
	}
	insert = fmt.Sprintf(
		`INSERT INTO %q (idx, name, period, period_err, epoch, epoch_err, duration) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		prefix+"_planets",
	)
	for i, p := range lc.Planets() {
		if _, err := tx.ExecContext(ctx, insert, i, p.Name, p.Period, p.PeriodErr, p.Epoch, p.EpochErr, p.Duration); err != nil {
			return fmt.Errorf("insert planet %d: %w", i, err)
		}
	}
	return nil
}
