// navdata/hold.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/log"
	"github.com/mmp/navdb/util"
)

const holdColumns = 11

type TurnDirection int

const (
	TurnRight TurnDirection = iota
	TurnLeft
)

func (t TurnDirection) String() string {
	if t == TurnLeft {
		return "left"
	}
	return "right"
}

// Hold is a published holding pattern from earth_hold.dat.
type Hold struct {
	InboundCourse float32 // magnetic
	// Legs are either timed or DME; the one that isn't used is zero.
	LegMinutes    float32
	LegNM         float32
	Turn          TurnDirection
	MinAltitudeFt int
	MaxAltitudeFt int
	SpeedKts      int
}

type holdKey struct {
	id, region, area string
	code             int
}

// HoldDB holds the holding patterns from X-Plane's earth_hold.dat, keyed
// by the fix they're at.
type HoldDB struct {
	Version, Cycle int

	holds  map[holdKey][]Hold
	errors []string
}

type holdRow struct {
	key  holdKey
	hold Hold
}

func LoadHoldDB(path string, lg *log.Logger) (*HoldDB, error) {
	start := time.Now()

	xf, err := loadXPFile(path, parseHoldRow)
	if err != nil {
		return nil, err
	}

	db := &HoldDB{
		Version: xf.version,
		Cycle:   xf.cycle,
		holds:   make(map[holdKey][]Hold),
		errors:  xf.errors,
	}
	for _, r := range xf.rows {
		db.holds[r.key] = append(db.holds[r.key], r.hold)
	}

	for _, msg := range db.errors {
		lg.Warn("Skipped hold row", slog.String("error", msg))
	}
	lg.Info("Loaded holds", slog.Int("cycle", db.Cycle), slog.Int("fixes", len(db.holds)),
		slog.Duration("elapsed", time.Since(start)))

	if len(db.errors) > 0 {
		return db, fmt.Errorf("%d malformed rows: %w", len(db.errors), aviation.ErrPartialLoad)
	}
	return db, nil
}

// Holds returns the holding patterns published at the waypoint.
func (db *HoldDB) Holds(wp aviation.Waypoint) []Hold {
	key := holdKey{id: wp.Id, region: wp.Region, area: wp.Area, code: xpFixTypeCode(wp.Type)}
	return append([]Hold(nil), db.holds[key]...)
}

func (db *HoldDB) NumFixes() int { return len(db.holds) }

func (db *HoldDB) LoadErrors() []string {
	return append([]string(nil), db.errors...)
}

// parseHoldRow handles an earth_hold.dat row: the ident, region, area
// and type of the fix, then the inbound course, leg time, leg distance,
// turn direction, minimum and maximum altitudes and speed limit.
func parseHoldRow(line string, version int) (holdRow, error) {
	f := util.SplitFields(line, holdColumns)
	if len(f) != holdColumns {
		return holdRow{}, fmt.Errorf("%w: %d columns, expected %d", ErrMalformedRow, len(f), holdColumns)
	}

	code, err := strconv.Atoi(f[3])
	if err != nil {
		return holdRow{}, fmt.Errorf("%w: %q: bad fix type", ErrMalformedRow, f[3])
	}
	crs, err1 := parseFloat32(f[4])
	mins, err2 := parseFloat32(f[5])
	nm, err3 := parseFloat32(f[6])
	minAlt, err4 := strconv.Atoi(f[8])
	maxAlt, err5 := strconv.Atoi(f[9])
	spd, err6 := strconv.Atoi(f[10])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return holdRow{}, fmt.Errorf("%w: bad numeric column", ErrMalformedRow)
	}

	var turn TurnDirection
	switch f[7] {
	case "L":
		turn = TurnLeft
	case "R":
		turn = TurnRight
	default:
		return holdRow{}, fmt.Errorf("%w: %q: bad turn direction", ErrMalformedRow, f[7])
	}

	return holdRow{
		key: holdKey{id: f[0], region: f[1], area: f[2], code: code},
		hold: Hold{
			InboundCourse: crs,
			LegMinutes:    mins,
			LegNM:         nm,
			Turn:          turn,
			MinAltitudeFt: minAlt,
			MaxAltitudeFt: maxAlt,
			SpeedKts:      spd,
		},
	}, nil
}
