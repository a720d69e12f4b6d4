// navdata/navaid.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/log"
	"github.com/mmp/navdb/math"
	"github.com/mmp/navdb/util"

	"golang.org/x/sync/errgroup"
)

const (
	// xp12Version is the first data file version with the spoken-name
	// column in earth_fix.dat.
	xp12Version = 1200

	fixColumnsXP11 = 6
	fixColumnsXP12 = 7
	navColumns     = 11

	// Navaids of compatible types on the same frequency that are closer
	// than this (sum of lat and long deltas, in degrees) are merged.
	colocatedTolerance = 0.001
)

// Navaid holds the radio data of an earth_nav.dat entry. Waypoints
// refer to it via their aviation.NavaidRef.
type Navaid struct {
	Id          string
	Type        aviation.FixType
	Location    math.Point2LL
	ElevationFt float32
	// Frequency is in 10 kHz units for VHF navaids and in kHz for NDBs.
	Frequency int
	RangeNM   int
	// MagVar is the slaved variation for VORs; for localizers and
	// glideslopes it holds the course instead.
	MagVar float32
	Area   string
	Region string
}

func (n Navaid) FrequencyString() string {
	if n.Type == aviation.FixNDB {
		return strconv.Itoa(n.Frequency)
	}
	return fmt.Sprintf("%.2f", float32(n.Frequency)/100)
}

var xpNavaidTypes = map[int]aviation.FixType{
	2:  aviation.FixNDB,
	3:  aviation.FixVOR,
	4:  aviation.FixILSLoc,
	5:  aviation.FixILSLocOnly,
	6:  aviation.FixILSGS,
	7:  aviation.FixOuterMarker,
	8:  aviation.FixMiddleMarker,
	9:  aviation.FixInnerMarker,
	10: aviation.FixILSFull,
	12: aviation.FixDME,
	13: aviation.FixDMEOnly,
	15: aviation.FixVORDME,
	18: aviation.FixILSDME,
}

// compositeType returns the type of the navaid that results from
// co-locating navaids of types a and b, or FixNone if they don't combine.
func compositeType(a, b aviation.FixType) aviation.FixType {
	t := a | b
	ils := aviation.FixILSLoc | aviation.FixILSLocOnly | aviation.FixILSGS | aviation.FixILSFull

	switch {
	case t&aviation.FixILSLoc != 0 && t&aviation.FixILSGS != 0:
		return aviation.FixILSFull
	case t&aviation.FixVOR != 0 && t&aviation.FixDME != 0:
		return aviation.FixVORDME
	case t&ils != 0 && t&aviation.FixDME != 0:
		return aviation.FixILSDME
	default:
		return aviation.FixNone
	}
}

type fixKey struct {
	id, region, area string
}

// NavaidDB holds the waypoints and navaids from X-Plane's earth_fix.dat
// and earth_nav.dat files.
type NavaidDB struct {
	FixVersion, FixCycle       int
	NavaidVersion, NavaidCycle int

	fixes              map[string][]aviation.Waypoint
	navaids            []Navaid
	fixDescriptions    map[fixKey]string
	navaidDescriptions map[fixKey]string
	errors             []string
}

// LoadNavaidDB loads the two files concurrently. If some rows were
// malformed, the database is returned along with an error wrapping
// aviation.ErrPartialLoad.
func LoadNavaidDB(fixPath, navPath string, lg *log.Logger) (*NavaidDB, error) {
	start := time.Now()

	var fixes, navs *xpFile[xpRow]
	var eg errgroup.Group
	eg.Go(func() (err error) {
		fixes, err = loadXPFile(fixPath, parseFixRow)
		return
	})
	eg.Go(func() (err error) {
		navs, err = loadXPFile(navPath, parseNavRow)
		return
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	db := &NavaidDB{
		FixVersion:         fixes.version,
		FixCycle:           fixes.cycle,
		NavaidVersion:      navs.version,
		NavaidCycle:        navs.cycle,
		fixes:              make(map[string][]aviation.Waypoint),
		fixDescriptions:    make(map[fixKey]string),
		navaidDescriptions: make(map[fixKey]string),
		errors:             append(fixes.errors, navs.errors...),
	}

	// Navaids go first, so that they're the first candidates when a
	// waypoint shares their name.
	for _, r := range navs.rows {
		db.addNavaid(r.navaid, r.description)
	}
	for _, r := range fixes.rows {
		db.fixes[r.wp.Id] = append(db.fixes[r.wp.Id], r.wp)
		db.fixDescriptions[fixKey{r.wp.Id, r.wp.Region, r.wp.Area}] = r.description
	}

	for _, msg := range db.errors {
		lg.Warn("Skipped navigation data row", slog.String("error", msg))
	}
	lg.Info("Loaded navigation data",
		slog.Int("fix_cycle", db.FixCycle),
		slog.Int("navaid_cycle", db.NavaidCycle),
		slog.Int("navaids", len(db.navaids)),
		slog.Int("idents", len(db.fixes)),
		slog.Duration("elapsed", time.Since(start)))

	if len(db.errors) > 0 {
		return db, fmt.Errorf("%d malformed rows: %w", len(db.errors), aviation.ErrPartialLoad)
	}
	return db, nil
}

func (db *NavaidDB) addNavaid(nav Navaid, description string) {
	for i, wp := range db.fixes[nav.Id] {
		if !wp.Navaid.Valid() {
			continue
		}
		existing := &db.navaids[wp.Navaid-1]
		if *existing == nav {
			return
		}

		dev := math.Abs(wp.Location[0]-nav.Location[0]) + math.Abs(wp.Location[1]-nav.Location[1])
		if ct := compositeType(wp.Type, nav.Type); ct != aviation.FixNone && dev < colocatedTolerance &&
			existing.Frequency == nav.Frequency {
			db.fixes[nav.Id][i].Type = ct
			existing.Type = ct
			return
		}
	}

	db.navaids = append(db.navaids, nav)
	db.fixes[nav.Id] = append(db.fixes[nav.Id], aviation.Waypoint{
		Id:       nav.Id,
		Type:     nav.Type,
		Location: nav.Location,
		Area:     nav.Area,
		Region:   nav.Region,
		Navaid:   aviation.NavaidRef(len(db.navaids)),
	})
	db.navaidDescriptions[fixKey{nav.Id, nav.Region, nav.Area}] = description
}

// LookupWaypoints returns the waypoints and navaids named id in the
// given area whose type matches mask. An empty region matches all
// regions.
func (db *NavaidDB) LookupWaypoints(id, area, region string, mask aviation.FixType) []aviation.Waypoint {
	var wps []aviation.Waypoint
	for _, wp := range db.fixes[id] {
		if wp.Area == area && (region == "" || wp.Region == region) && wp.Type.Matches(mask) {
			wps = append(wps, wp)
		}
	}
	return wps
}

// Lookup returns every entry named id, regardless of area or region.
func (db *NavaidDB) Lookup(id string) []aviation.Waypoint {
	return append([]aviation.Waypoint(nil), db.fixes[id]...)
}

func (db *NavaidDB) Navaid(ref aviation.NavaidRef) (Navaid, bool) {
	if !ref.Valid() || int(ref) > len(db.navaids) {
		return Navaid{}, false
	}
	return db.navaids[ref-1], true
}

// Description returns the name of the waypoint or navaid, or an empty
// string if it is unknown.
func (db *NavaidDB) Description(wp aviation.Waypoint) string {
	key := fixKey{wp.Id, wp.Region, wp.Area}
	if wp.Navaid.Valid() {
		return db.navaidDescriptions[key]
	}
	return db.fixDescriptions[key]
}

func (db *NavaidDB) NumIdents() int  { return len(db.fixes) }
func (db *NavaidDB) NumNavaids() int { return len(db.navaids) }

// LoadErrors returns the descriptions of the rows that were skipped.
func (db *NavaidDB) LoadErrors() []string {
	return append([]string(nil), db.errors...)
}

type xpRow struct {
	wp          aviation.Waypoint
	navaid      Navaid
	description string
}

// parseFixRow handles an earth_fix.dat row: lat, long, ident, area,
// region, ARINC type and, in XP12 files, the spoken name.
func parseFixRow(line string, version int) (xpRow, error) {
	ncol := fixColumnsXP11
	if version >= xp12Version || (version == 0 && len(strings.Fields(line)) >= fixColumnsXP12) {
		ncol = fixColumnsXP12
	}

	f := util.SplitFields(line, ncol)
	if len(f) != ncol {
		return xpRow{}, fmt.Errorf("%w: %d columns, expected %d", ErrMalformedRow, len(f), ncol)
	}
	p, err := parseLatLong(f[0], f[1])
	if err != nil {
		return xpRow{}, err
	}
	if _, err := strconv.Atoi(f[5]); err != nil {
		return xpRow{}, fmt.Errorf("%w: %q: bad ARINC type", ErrMalformedRow, f[5])
	}

	row := xpRow{
		wp: aviation.Waypoint{
			Id:       f[2],
			Type:     aviation.FixWaypoint,
			Location: p,
			Area:     f[3],
			Region:   f[4],
		},
		description: f[2],
	}
	if ncol == fixColumnsXP12 {
		row.description = f[6]
	}
	return row, nil
}

// parseNavRow handles an earth_nav.dat row: type code, lat, long,
// elevation, frequency, range, variation, ident, area, region, name.
func parseNavRow(line string, version int) (xpRow, error) {
	f := util.SplitFields(line, navColumns)
	if len(f) != navColumns {
		return xpRow{}, fmt.Errorf("%w: %d columns, expected %d", ErrMalformedRow, len(f), navColumns)
	}

	code, err := strconv.Atoi(f[0])
	if err != nil {
		return xpRow{}, fmt.Errorf("%w: %q: bad row code", ErrMalformedRow, f[0])
	}
	tp, ok := xpNavaidTypes[code]
	if !ok {
		// GLS, FPAP and the like.
		return xpRow{}, errSkipRow
	}

	p, err := parseLatLong(f[1], f[2])
	if err != nil {
		return xpRow{}, err
	}
	elev, err1 := parseFloat32(f[3])
	freq, err2 := strconv.Atoi(f[4])
	rng, err3 := strconv.Atoi(f[5])
	mv, err4 := parseFloat32(f[6])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return xpRow{}, fmt.Errorf("%w: bad numeric column", ErrMalformedRow)
	}

	return xpRow{
		navaid: Navaid{
			Id:          f[7],
			Type:        tp,
			Location:    p,
			ElevationFt: elev,
			Frequency:   freq,
			RangeNM:     rng,
			MagVar:      mv,
			Area:        f[8],
			Region:      f[9],
		},
		description: f[10],
	}, nil
}
