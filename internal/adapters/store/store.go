// Package store persists fitted posterior samples, fit configuration and the
// observation series to a single SQLite file.
//
// A caller-chosen path segment (prefix) namespaces four tables inside the
// file: <prefix>_samples, <prefix>_meta, <prefix>_lightcurve and
// <prefix>_planets. Several fits can share one file under different
// prefixes. Concurrent writers to the same file are not supported; the
// caller must serialize them.
package store

import (
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SaeedTaghavi/transit-fitting/pkg/logger"
)

// Default store constants.
const (
	defaultPrefix = "fit"

	// Series type identifier attached to saved fits.
	lcTypeTag = "lightcurve"
)

var prefixRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store reads and writes fits in one SQLite file.
type Store struct {
	path string
	log  logger.Logger
}

// New creates a Store over the SQLite file at path. The file is created
// lazily on first save.
func New(path string) *Store {
	return &Store{
		path: path,
		log:  logger.Named("store"),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// open opens the backing file, creating it when create is set.
func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	// SQLite supports a single writer; avoid SQLITE_BUSY from our own pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", s.path, err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}
	return db, nil
}

// normalizePrefix validates the path segment and applies the default.
func normalizePrefix(prefix string) (string, error) {
	if prefix == "" {
		return defaultPrefix, nil
	}
	if !prefixRe.MatchString(prefix) {
		return "", fmt.Errorf("%w: %q", ErrBadPrefix, prefix)
	}
	return prefix, nil
}

// hasPrefix reports whether the given path segment already holds a fit.
func hasPrefix(db *sql.DB, prefix string) (bool, error) {
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		prefix+"_samples",
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", prefix, err)
	}
	return n > 0, nil
}

func dropPrefix(db *sql.DB, prefix string) error {
	for _, suffix := range []string{"_samples", "_meta", "_lightcurve", "_planets"} {
		if _, err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, prefix+suffix)); err != nil {
			return fmt.Errorf("drop %s%s: %w", prefix, suffix, err)
		}
	}
	return nil
}
