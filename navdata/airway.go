// navdata/airway.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/log"
	"github.com/mmp/navdb/util"
)

const awyColumns = 11

// AirwayDirection gives which way a segment may be flown, relative to
// the order of its fixes in earth_awy.dat.
type AirwayDirection byte

const (
	AirwayBothWays AirwayDirection = 'N'
	AirwayForward  AirwayDirection = 'F'
	AirwayBackward AirwayDirection = 'B'
)

// AirwayFix identifies a fix on an airway. Type is the mask of waypoint
// types it may be (e.g., aviation.FixVHFNavaid for VHF navaids).
type AirwayFix struct {
	Id     string
	Region string
	Type   aviation.FixType
}

// AirwayAltitudes is the range of flight levels over which a segment is
// defined.
type AirwayAltitudes struct {
	Base, Top int
}

// AirwayPoint is a fix along a path returned by AirwayDB.Path. Altitudes
// is the range of the segment that leaves it, or for the last point, the
// one that arrives at it.
type AirwayPoint struct {
	AirwayFix
	Altitudes AirwayAltitudes
}

type airwaySegment struct {
	to        int
	altitudes AirwayAltitudes
}

type airway struct {
	fixes []AirwayFix
	// next holds the segments that may be flown from each fix, in the
	// order they were loaded.
	next  [][]airwaySegment
	index map[AirwayFix]int
}

func (a *airway) add(f AirwayFix) int {
	if i, ok := a.index[f]; ok {
		return i
	}
	a.fixes = append(a.fixes, f)
	a.next = append(a.next, nil)
	a.index[f] = len(a.fixes) - 1
	return len(a.fixes) - 1
}

func (a *airway) connect(from, to int, alt AirwayAltitudes) {
	for _, s := range a.next[from] {
		if s.to == to {
			return
		}
	}
	a.next[from] = append(a.next[from], airwaySegment{to: to, altitudes: alt})
}

// find returns the index of the first fix on the airway named id.
func (a *airway) find(id string) (int, bool) {
	for i, f := range a.fixes {
		if f.Id == id {
			return i, true
		}
	}
	return 0, false
}

// AirwayDB holds the airway graph from X-Plane's earth_awy.dat.
type AirwayDB struct {
	Version, Cycle int

	airways map[string]*airway
	errors  []string
}

type awyRow struct {
	from, to  AirwayFix
	dir       AirwayDirection
	altitudes AirwayAltitudes
	names     []string
}

// LoadAirwayDB loads earth_awy.dat. As with LoadNavaidDB, malformed
// rows are skipped and reported with an error wrapping
// aviation.ErrPartialLoad.
func LoadAirwayDB(path string, lg *log.Logger) (*AirwayDB, error) {
	start := time.Now()

	xf, err := loadXPFile(path, parseAirwayRow)
	if err != nil {
		return nil, err
	}

	db := &AirwayDB{
		Version: xf.version,
		Cycle:   xf.cycle,
		airways: make(map[string]*airway),
		errors:  xf.errors,
	}
	for _, r := range xf.rows {
		db.addSegment(r)
	}

	for _, msg := range db.errors {
		lg.Warn("Skipped airway row", slog.String("error", msg))
	}
	lg.Info("Loaded airways", slog.Int("cycle", db.Cycle), slog.Int("airways", len(db.airways)),
		slog.Duration("elapsed", time.Since(start)))

	if len(db.errors) > 0 {
		return db, fmt.Errorf("%d malformed rows: %w", len(db.errors), aviation.ErrPartialLoad)
	}
	return db, nil
}

func (db *AirwayDB) addSegment(r awyRow) {
	for _, name := range r.names {
		awy, ok := db.airways[name]
		if !ok {
			awy = &airway{index: make(map[AirwayFix]int)}
			db.airways[name] = awy
		}

		from, to := awy.add(r.from), awy.add(r.to)
		if r.dir != AirwayBackward {
			awy.connect(from, to, r.altitudes)
		}
		if r.dir != AirwayForward {
			awy.connect(to, from, r.altitudes)
		}
	}
}

// OnAirway reports whether a fix named id is on the airway.
func (db *AirwayDB) OnAirway(name, id string) bool {
	if awy, ok := db.airways[name]; ok {
		_, ok = awy.find(id)
		return ok
	}
	return false
}

// Path returns the fixes along the airway from one fix to another,
// inclusive, honoring one-way segments.
func (db *AirwayDB) Path(name, from, to string) ([]AirwayPoint, error) {
	awy, start, err := db.start(name, from)
	if err != nil {
		return nil, err
	}
	end, ok := awy.find(to)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", name, to, ErrNotOnAirway)
	}

	path := awy.search(start, func(i int) bool { return i == end })
	if path == nil {
		return nil, fmt.Errorf("%s %s-%s: %w", name, from, to, ErrNoAirwayPath)
	}
	return path, nil
}

// PathToAirway returns the fixes along the airway from the given fix to
// the closest one where it meets the airway named next.
func (db *AirwayDB) PathToAirway(name, from, next string) ([]AirwayPoint, error) {
	awy, start, err := db.start(name, from)
	if err != nil {
		return nil, err
	}
	join, ok := db.airways[next]
	if !ok || name == next {
		return nil, fmt.Errorf("%s: %w", next, ErrUnknownAirway)
	}

	path := awy.search(start, func(i int) bool {
		_, ok := join.index[awy.fixes[i]]
		return ok
	})
	if path == nil {
		return nil, fmt.Errorf("%s %s-%s: %w", name, from, next, ErrNoAirwayPath)
	}
	return path, nil
}

func (db *AirwayDB) start(name, from string) (*airway, int, error) {
	awy, ok := db.airways[name]
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w", name, ErrUnknownAirway)
	}
	start, ok := awy.find(from)
	if !ok {
		return nil, 0, fmt.Errorf("%s %s: %w", name, from, ErrNotOnAirway)
	}
	return awy, start, nil
}

// search does a breadth-first search from start and returns the path to
// the first fix that satisfies done, or nil if there is none.
func (a *airway) search(start int, done func(int) bool) []AirwayPoint {
	prev := make([]int, len(a.fixes))
	for i := range prev {
		prev[i] = -1
	}
	prev[start] = start

	end := -1
	q := []int{start}
	for len(q) > 0 {
		cur := q[0]
		q = q[1:]
		if done(cur) {
			end = cur
			break
		}
		for _, s := range a.next[cur] {
			if prev[s.to] == -1 {
				prev[s.to] = cur
				q = append(q, s.to)
			}
		}
	}
	if end == -1 {
		return nil
	}

	var idx []int
	for i := end; ; i = prev[i] {
		idx = append(idx, i)
		if i == start {
			break
		}
	}
	slices.Reverse(idx)

	path := make([]AirwayPoint, len(idx))
	for i, fi := range idx {
		path[i].AirwayFix = a.fixes[fi]
		switch {
		case i+1 < len(idx):
			path[i].Altitudes = a.segment(fi, idx[i+1])
		case i > 0:
			path[i].Altitudes = a.segment(idx[i-1], fi)
		}
	}
	return path
}

func (a *airway) segment(from, to int) AirwayAltitudes {
	for _, s := range a.next[from] {
		if s.to == to {
			return s.altitudes
		}
	}
	return AirwayAltitudes{}
}

func (db *AirwayDB) NumAirways() int { return len(db.airways) }

func (db *AirwayDB) LoadErrors() []string {
	return append([]string(nil), db.errors...)
}

// parseAirwayRow handles an earth_awy.dat row: the ident, region and
// type of each end, the direction, high/low, the base and top flight
// levels and the '-'-separated names of the airways it belongs to.
func parseAirwayRow(line string, version int) (awyRow, error) {
	f := util.SplitFields(line, awyColumns)
	if len(f) != awyColumns {
		return awyRow{}, fmt.Errorf("%w: %d columns, expected %d", ErrMalformedRow, len(f), awyColumns)
	}

	fix := func(id, region, code string) (AirwayFix, error) {
		c, err := strconv.Atoi(code)
		if err != nil || xpFixTypes[c] == aviation.FixNone {
			return AirwayFix{}, fmt.Errorf("%w: %q: bad fix type", ErrMalformedRow, code)
		}
		return AirwayFix{Id: id, Region: region, Type: xpFixTypes[c]}, nil
	}
	from, err := fix(f[0], f[1], f[2])
	if err != nil {
		return awyRow{}, err
	}
	to, err := fix(f[3], f[4], f[5])
	if err != nil {
		return awyRow{}, err
	}

	dir := AirwayDirection(util.FirstByte(f[6]))
	if len(f[6]) != 1 || (dir != AirwayBothWays && dir != AirwayForward && dir != AirwayBackward) {
		return awyRow{}, fmt.Errorf("%w: %q: bad direction", ErrMalformedRow, f[6])
	}
	base, err1 := strconv.Atoi(f[8])
	top, err2 := strconv.Atoi(f[9])
	if err1 != nil || err2 != nil {
		return awyRow{}, fmt.Errorf("%w: bad flight level", ErrMalformedRow)
	}

	return awyRow{
		from:      from,
		to:        to,
		dir:       dir,
		altitudes: AirwayAltitudes{Base: base, Top: top},
		names:     strings.Split(f[10], "-"),
	}, nil
}
