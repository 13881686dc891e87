package lightcurve

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FromCSV reads a light curve from a CSV file with a header row. Recognized
// columns are time, flux and flux_err; flux_err is optional. Extra columns
// are ignored.
func FromCSV(path string, opts ...Option) (*LightCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open light curve: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, opts...)
}

// ReadCSV reads a light curve in CSV form from r.
func ReadCSV(r io.Reader, opts ...Option) (*LightCurve, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	timeCol, fluxCol, errCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "time", "t":
			timeCol = i
		case "flux", "f":
			fluxCol = i
		case "flux_err", "ferr", "err":
			errCol = i
		}
	}
	if timeCol < 0 || fluxCol < 0 {
		return nil, fmt.Errorf("%w: need time and flux columns", ErrBadRecord)
	}

	var times, fluxes, errs []float64
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line++
		t, err := strconv.ParseFloat(rec[timeCol], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad time %q", ErrBadRecord, line, rec[timeCol])
		}
		f, err := strconv.ParseFloat(rec[fluxCol], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad flux %q", ErrBadRecord, line, rec[fluxCol])
		}
		times = append(times, t)
		fluxes = append(fluxes, f)
		if errCol >= 0 {
			e, err := strconv.ParseFloat(rec[errCol], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad flux_err %q", ErrBadRecord, line, rec[errCol])
			}
			errs = append(errs, e)
		}
	}
	if errCol < 0 {
		errs = nil
	}
	return New(times, fluxes, errs, opts...)
}
