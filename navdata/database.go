// navdata/database.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/log"
	"github.com/mmp/navdb/math"

	"golang.org/x/sync/errgroup"
)

// Paths gives the locations of the X-Plane navigation data files.
type Paths struct {
	AptDat   string
	EarthFix string
	EarthNav string
	// EarthAwy and EarthHold are optional; if not given, there are no
	// airways or holds.
	EarthAwy  string
	EarthHold string
	// CacheDir is where the parsed apt.dat is cached; if empty, the
	// user's cache directory is used.
	CacheDir     string
	DisableCache bool
}

// Database is the navigation data that procedures are resolved against.
// It is only available once everything has been loaded and is immutable
// after that.
type Database struct {
	navaids  *NavaidDB
	airports *AirportDB
	airways  *AirwayDB
	holds    *HoldDB
	warnings []string
}

var _ aviation.NavDataSource = (*Database)(nil)

// Loader loads the navigation data in the background.
type Loader struct {
	eg    errgroup.Group
	start time.Time
	lg    *log.Logger

	db       *Database
	warnings [4][]string

	once sync.Once
	err  error
}

// StartLoad starts loading the files given by paths and returns
// immediately; Wait returns the result.
func StartLoad(paths Paths, lg *log.Logger) *Loader {
	l := &Loader{start: time.Now(), lg: lg, db: &Database{airways: &AirwayDB{}, holds: &HoldDB{}}}

	// Malformed rows are logged by the loaders and aren't fatal.
	partial := func(err error) error {
		if errors.Is(err, aviation.ErrPartialLoad) {
			return nil
		}
		return err
	}

	l.eg.Go(func() error {
		db, err := LoadNavaidDB(paths.EarthFix, paths.EarthNav, lg)
		if db != nil {
			l.db.navaids = db
			l.warnings[0] = db.LoadErrors()
		}
		return partial(err)
	})
	l.eg.Go(func() error {
		db, err := LoadAirportDB(paths, lg)
		if db != nil {
			l.db.airports = db
			l.warnings[1] = db.LoadErrors()
		}
		return partial(err)
	})
	if paths.EarthAwy != "" {
		l.eg.Go(func() error {
			db, err := LoadAirwayDB(paths.EarthAwy, lg)
			if db != nil {
				l.db.airways = db
				l.warnings[2] = db.LoadErrors()
			}
			return partial(err)
		})
	}
	if paths.EarthHold != "" {
		l.eg.Go(func() error {
			db, err := LoadHoldDB(paths.EarthHold, lg)
			if db != nil {
				l.db.holds = db
				l.warnings[3] = db.LoadErrors()
			}
			return partial(err)
		})
	}

	return l
}

// Wait blocks until loading finishes. It may be called multiple times.
func (l *Loader) Wait() (*Database, error) {
	l.once.Do(func() {
		if l.err = l.eg.Wait(); l.err != nil {
			l.lg.Errorf("Loading navigation data: %v", l.err)
			l.db = nil
			return
		}
		for _, w := range l.warnings {
			l.db.warnings = append(l.db.warnings, w...)
		}
		l.lg.Info("Navigation data ready", slog.Duration("elapsed", time.Since(l.start)))
	})
	return l.db, l.err
}

func (db *Database) Navaids() *NavaidDB   { return db.navaids }
func (db *Database) Airports() *AirportDB { return db.airports }
func (db *Database) Airways() *AirwayDB   { return db.airways }
func (db *Database) Holds() *HoldDB       { return db.holds }

// LoadErrors returns the rows of the navigation data files that were
// skipped.
func (db *Database) LoadErrors() []string {
	return append([]string(nil), db.warnings...)
}

func (db *Database) LookupWaypoints(id, area, region string, mask aviation.FixType) []aviation.Waypoint {
	return db.navaids.LookupWaypoints(id, area, region, mask)
}

func (db *Database) AirportLocation(icao string) (math.Point2LL, bool) {
	return db.airports.AirportLocation(icao)
}

func (db *Database) RunwayThreshold(icao, rwy string) (aviation.RunwayThreshold, bool) {
	return db.airports.RunwayThreshold(icao, rwy)
}

// LoadAirport loads the airport's procedures, resolving them against db.
func (db *Database) LoadAirport(icao string, opts aviation.AirportOptions, lg *log.Logger) (*aviation.Airport, error) {
	return aviation.LoadAirport(icao, db, opts, lg)
}
