// navdata/airport.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/log"
	"github.com/mmp/navdb/math"
	"github.com/mmp/navdb/util"

	"github.com/brunoga/deep"
)

// apt.dat row codes
const (
	aptLandAirport   = 1
	aptSeaplaneBase  = 16
	aptHeliport      = 17
	aptLandRunway    = 100
	aptMetadata      = 1302
	aptEndOfFile     = 99
	aptRunwayColumns = 26
)

const (
	airportCacheName    = "airports.msgpack.zst"
	airportCacheVersion = 1
)

// AirportData is the apt.dat information about a land airport.
type AirportData struct {
	ICAO string
	// Location is the mean of the airport's runway thresholds.
	Location           math.Point2LL
	ElevationFt        int
	TransitionAltitude int
	TransitionLevel    int
	Runways            map[string]RunwayEnd // by normalized id
}

// RunwayEnd is one end of an apt.dat land runway.
type RunwayEnd struct {
	Id                  string
	Threshold           math.Point2LL
	End                 math.Point2LL
	DisplacedThresholdM float32
}

// AirportDB holds the airports and runways from X-Plane's apt.dat.
type AirportDB struct {
	Version   int
	FromCache bool

	airports map[string]AirportData
	errors   []string
}

// airportCache is what is stored in the on-disk cache.
type airportCache struct {
	CacheVersion int
	Source       string
	AptVersion   int
	Airports     map[string]AirportData
}

// LoadAirportDB loads paths.AptDat, or the cached result of a previous
// parse if it is newer than the file. If some rows were malformed, the
// database is returned along with an error wrapping
// aviation.ErrPartialLoad.
func LoadAirportDB(paths Paths, lg *log.Logger) (*AirportDB, error) {
	start := time.Now()

	fi, err := os.Stat(paths.AptDat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", aviation.ErrFileNotFound, err)
	}
	source, err := filepath.Abs(paths.AptDat)
	if err != nil {
		source = paths.AptDat
	}

	if !paths.DisableCache {
		var c airportCache
		mtime, err := util.CacheRetrieveObject(paths.CacheDir, airportCacheName, &c)
		if err == nil && mtime.After(fi.ModTime()) && c.CacheVersion == airportCacheVersion && c.Source == source {
			lg.Info("Loaded airports from cache", slog.Int("airports", len(c.Airports)),
				slog.Duration("elapsed", time.Since(start)))
			return &AirportDB{Version: c.AptVersion, FromCache: true, airports: c.Airports}, nil
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			lg.Warnf("%s: ignoring airport cache: %v", airportCacheName, err)
		}
	}

	r, err := util.OpenFile(paths.AptDat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", aviation.ErrFileNotFound, err)
	}
	defer r.Close()

	db, err := parseAptDat(r, filepath.Base(paths.AptDat))
	if err != nil {
		return nil, err
	}

	for _, msg := range db.errors {
		lg.Warn("Skipped apt.dat row", slog.String("error", msg))
	}
	lg.Info("Parsed airports", slog.String("path", paths.AptDat), slog.Int("airports", len(db.airports)),
		slog.Duration("elapsed", time.Since(start)))

	if !paths.DisableCache && len(db.errors) == 0 {
		c := airportCache{
			CacheVersion: airportCacheVersion,
			Source:       source,
			AptVersion:   db.Version,
			Airports:     db.airports,
		}
		if err := util.CacheStoreObject(paths.CacheDir, airportCacheName, c); err != nil {
			lg.Warnf("%s: unable to store airport cache: %v", airportCacheName, err)
		}
	}

	if len(db.errors) > 0 {
		return db, fmt.Errorf("%d malformed rows: %w", len(db.errors), aviation.ErrPartialLoad)
	}
	return db, nil
}

type aptParser struct {
	airports map[string]AirportData
	cur      *AirportData // nil when not in a land airport
	ident    string
}

func (p *aptParser) flush() {
	if p.cur == nil {
		return
	}
	if p.cur.ICAO == "" {
		p.cur.ICAO = p.ident
	}
	if p.cur.ICAO != "" && len(p.cur.Runways) > 0 {
		var pts []math.Point2LL
		for _, id := range util.SortedMapKeys(p.cur.Runways) {
			pts = append(pts, p.cur.Runways[id].Threshold)
		}
		p.cur.Location = math.MeanPoint2LL(pts)
		p.airports[p.cur.ICAO] = *p.cur
	}
	p.cur = nil
}

func (p *aptParser) row(f []string) error {
	code, err := strconv.Atoi(f[0])
	if err != nil {
		return fmt.Errorf("%w: %q: bad row code", ErrMalformedRow, f[0])
	}

	switch code {
	case aptLandAirport:
		p.flush()
		if len(f) < 5 {
			return fmt.Errorf("%w: airport row has %d columns", ErrMalformedRow, len(f))
		}
		elev, err := strconv.Atoi(f[1])
		if err != nil {
			return fmt.Errorf("%w: %q: bad elevation", ErrMalformedRow, f[1])
		}
		p.cur = &AirportData{ElevationFt: elev, Runways: make(map[string]RunwayEnd)}
		p.ident = f[4]

	case aptSeaplaneBase, aptHeliport:
		p.flush()

	case aptMetadata:
		if p.cur == nil || len(f) < 3 {
			return nil
		}
		switch f[1] {
		case "icao_code":
			p.cur.ICAO = f[2]
		case "transition_alt", "transition_level":
			v, err := strconv.Atoi(strings.TrimPrefix(f[2], "FL"))
			if err != nil {
				return fmt.Errorf("%w: %q: bad %s", ErrMalformedRow, f[2], f[1])
			}
			if strings.HasPrefix(f[2], "FL") {
				v *= 100
			}
			if f[1] == "transition_alt" {
				p.cur.TransitionAltitude = v
			} else {
				p.cur.TransitionLevel = v
			}
		}

	case aptLandRunway:
		if p.cur == nil {
			return nil
		}
		ends, err := parseLandRunway(f)
		if err != nil {
			return err
		}
		for _, end := range ends {
			p.cur.Runways[end.Id] = end
		}
	}
	return nil
}

// parseLandRunway decodes a row 100: seven columns of surface and
// lighting data followed by nine columns for each end, starting with
// its id, threshold location and displaced threshold length.
func parseLandRunway(f []string) ([2]RunwayEnd, error) {
	if len(f) < aptRunwayColumns {
		return [2]RunwayEnd{}, fmt.Errorf("%w: runway row has %d columns, expected %d", ErrMalformedRow,
			len(f), aptRunwayColumns)
	}

	parseEnd := func(f []string) (RunwayEnd, error) {
		p, err := parseLatLong(f[1], f[2])
		if err != nil {
			return RunwayEnd{}, err
		}
		displ, err := parseFloat32(f[3])
		if err != nil {
			return RunwayEnd{}, fmt.Errorf("%w: %q: bad displaced threshold", ErrMalformedRow, f[3])
		}
		return RunwayEnd{Id: aviation.NormalizeRunwayId(f[0]), Threshold: p, DisplacedThresholdM: displ}, nil
	}

	a, err := parseEnd(f[8:12])
	if err != nil {
		return [2]RunwayEnd{}, err
	}
	b, err := parseEnd(f[17:21])
	if err != nil {
		return [2]RunwayEnd{}, err
	}
	a.End, b.End = b.Threshold, a.Threshold
	return [2]RunwayEnd{a, b}, nil
}

func parseAptDat(r io.Reader, name string) (*AirportDB, error) {
	p := &aptParser{airports: make(map[string]AirportData)}
	db := &AirportDB{}

	var e util.ErrorLogger
	e.Push(name)
	err := util.ForEachLine(r, func(lineno int, line string) bool {
		f := strings.Fields(line)
		if len(f) == 0 {
			return true
		}
		if lineno <= 2 {
			// "I" and then the version line.
			if v, err := strconv.Atoi(f[0]); err == nil && lineno == 2 {
				db.Version = v
			}
			return true
		}
		if f[0] == strconv.Itoa(aptEndOfFile) {
			return false
		}

		if err := p.row(f); err != nil {
			e.Push(fmt.Sprintf("line %d", lineno))
			e.Error(err)
			e.Pop()
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	p.flush()

	db.airports = p.airports
	db.errors = e.Errors()
	return db, nil
}

func (db *AirportDB) AirportLocation(icao string) (math.Point2LL, bool) {
	ap, ok := db.airports[icao]
	return ap.Location, ok
}

// RunwayThreshold returns the threshold of the runway at the airport; rwy
// need not be normalized.
func (db *AirportDB) RunwayThreshold(icao, rwy string) (aviation.RunwayThreshold, bool) {
	if ap, ok := db.airports[icao]; ok {
		if end, ok := ap.Runways[aviation.NormalizeRunwayId(rwy)]; ok {
			return aviation.RunwayThreshold{Location: end.Threshold, DisplacedThresholdM: end.DisplacedThresholdM}, true
		}
	}
	return aviation.RunwayThreshold{}, false
}

// Airport returns a copy of the airport's data.
func (db *AirportDB) Airport(icao string) (AirportData, bool) {
	ap, ok := db.airports[icao]
	if !ok {
		return AirportData{}, false
	}
	return deep.MustCopy(ap), true
}

func (db *AirportDB) Len() int { return len(db.airports) }

func (db *AirportDB) LoadErrors() []string {
	return append([]string(nil), db.errors...)
}
