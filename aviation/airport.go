// aviation/airport.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmp/navdb/log"
	"github.com/mmp/navdb/util"

	"github.com/brunoga/deep"
)

const (
	DefaultLegCapacity = 30000
	DefaultCIFPSuffix  = ".dat"
)

// LoadStatus summarizes how loading an airport's procedures went.
type LoadStatus int

const (
	StatusSuccess LoadStatus = iota
	// StatusPartialLoad indicates that some records were malformed and
	// skipped; everything else is available.
	StatusPartialLoad
	StatusFileNotFound
	StatusDatabaseError
	// StatusBadAlloc indicates that the leg store filled up. The legs
	// loaded before that point can still be queried.
	StatusBadAlloc
)

func (s LoadStatus) String() string {
	return []string{"success", "partial load", "file not found", "database error", "leg store full"}[int(s)]
}

// Fatal reports whether the load stopped before reaching the end of the
// procedure file.
func (s LoadStatus) Fatal() bool {
	return s != StatusSuccess && s != StatusPartialLoad
}

// Err returns the sentinel error corresponding to the status, or nil for
// StatusSuccess.
func (s LoadStatus) Err() error {
	switch s {
	case StatusPartialLoad:
		return ErrPartialLoad
	case StatusFileNotFound:
		return ErrFileNotFound
	case StatusDatabaseError:
		return ErrDatabase
	case StatusBadAlloc:
		return ErrLegStoreFull
	default:
		return nil
	}
}

type AirportOptions struct {
	// Dir is the directory holding the per-airport procedure files.
	Dir string
	// Suffix is appended to the ICAO code to give the file name; a
	// ".zst" suffix means the file is zstd compressed. Defaults to
	// DefaultCIFPSuffix.
	Suffix string
	// LegCapacity bounds the number of legs stored for the airport.
	// Defaults to DefaultLegCapacity.
	LegCapacity int
}

func (o AirportOptions) Path(icao string) string {
	return filepath.Join(o.Dir, icao+util.Select(o.Suffix != "", o.Suffix, DefaultCIFPSuffix))
}

// procedureDB maps procedure name to transition key to the handles of
// the transition's legs in the leg store.
type procedureDB map[string]map[string][]int

func (db procedureDB) add(proc, trans string, h int) {
	if db[proc] == nil {
		db[proc] = make(map[string][]int)
	}
	db[proc][trans] = append(db[proc][trans], h)
}

type nameSet map[string]struct{}

func (s nameSet) sorted() []string { return util.SortedMapKeys(s) }

// Airport is the procedure database of a single airport: its runways and
// the legs of its SIDs, STARs and approaches, indexed by procedure and
// transition. It is immutable once LoadAirport returns and may be used
// concurrently.
type Airport struct {
	icao   string
	status LoadStatus
	errors []string

	legs    *util.Arena[Leg]
	runways map[string]Runway

	sids, stars, approaches     procedureDB
	sidsByRunway, starsByRunway map[string]nameSet
}

func newAirport(icao string, capacity int) *Airport {
	return &Airport{
		icao:          icao,
		legs:          util.NewArena[Leg](capacity),
		runways:       make(map[string]Runway),
		sids:          make(procedureDB),
		stars:         make(procedureDB),
		approaches:    make(procedureDB),
		sidsByRunway:  make(map[string]nameSet),
		starsByRunway: make(map[string]nameSet),
	}
}

type queuedRecord struct {
	lineno int
	line   string
	tp     ProcedureType
}

// LoadAirport reads the procedure file for the given airport and resolves
// its fixes against src, which must be fully loaded. A non-nil *Airport
// is always returned. If the load wasn't completely successful, the
// returned error wraps the sentinel error for the airport's Status; for
// StatusPartialLoad and StatusBadAlloc the Airport still holds whatever
// was loaded.
//
// Records whose tag isn't SID, STAR, APPCH, RWY or PRDAT are skipped,
// even if they are otherwise well-formed leg records, and make the load
// partial; they are not filed under the approaches.
func LoadAirport(icao string, src NavDataSource, opts AirportOptions, lg *log.Logger) (*Airport, error) {
	start := time.Now()
	lg = lg.With(slog.String("airport", icao))

	capacity := util.Select(opts.LegCapacity > 0, opts.LegCapacity, DefaultLegCapacity)
	ap := newAirport(icao, capacity)

	path := opts.Path(icao)
	f, err := util.OpenFile(path)
	if err != nil {
		ap.status = StatusFileNotFound
		lg.Infof("%s: %v", path, err)
		return ap, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	defer f.Close()

	var e util.ErrorLogger
	e.Push(filepath.Base(path))

	// First pass: runways are decoded right away, since procedure legs
	// may refer to them; everything else is queued.
	var queue []queuedRecord
	var dbErr error
	err = util.ForEachLine(f, func(lineno int, line string) bool {
		if strings.TrimSpace(line) == "" {
			return true
		}

		switch tp := ParseProcedureType(line); tp {
		case ProcedureRunway:
			rwy, err := parseRunwayRecord(line, icao, src)
			if err != nil {
				dbErr = err
				e.Push(fmt.Sprintf("line %d", lineno))
				e.Error(err)
				e.Pop()
				return false
			}
			ap.runways[rwy.Id] = rwy

		case ProcedurePRDAT:

		default:
			queue = append(queue, queuedRecord{lineno: lineno, line: line, tp: tp})
		}
		return true
	})

	if err != nil {
		ap.reset(StatusFileNotFound, e.Errors())
		lg.Warnf("%s: %v", path, err)
		return ap, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	if dbErr != nil {
		ap.reset(StatusDatabaseError, e.Errors())
		lg.Warnf("%s: %v", path, dbErr)
		return ap, dbErr
	}

	// Second pass: decode, store, and index the procedure legs.
	for _, rec := range queue {
		e.Push(fmt.Sprintf("line %d", rec.lineno))

		if err := ap.addRecord(rec, src); errors.Is(err, util.ErrArenaFull) {
			e.Error(ErrLegStoreFull)
			e.Pop()
			ap.status = StatusBadAlloc
			ap.errors = e.Errors()
			lg.Warnf("%s: leg store full after %d legs", path, ap.legs.Len())
			return ap, fmt.Errorf("%w: %d legs", ErrLegStoreFull, ap.legs.Cap())
		} else if err != nil {
			e.Error(err)
			ap.status = StatusPartialLoad
		}

		e.Pop()
	}

	ap.errors = e.Errors()
	for _, msg := range ap.errors {
		lg.Warn("Skipped procedure record", slog.String("error", msg))
	}
	lg.Info("Loaded procedures",
		slog.String("status", ap.status.String()),
		slog.Int("runways", len(ap.runways)),
		slog.Int("legs", ap.legs.Len()),
		slog.Duration("elapsed", time.Since(start)))

	if ap.status != StatusSuccess {
		return ap, fmt.Errorf("%s: %w", path, ap.status.Err())
	}
	return ap, nil
}

// reset discards everything loaded so far after a fatal error.
func (ap *Airport) reset(status LoadStatus, msgs []string) {
	*ap = *newAirport(ap.icao, ap.legs.Cap())
	ap.status = status
	ap.errors = msgs
}

func (ap *Airport) addRecord(rec queuedRecord, src NavDataSource) error {
	var db procedureDB
	switch rec.tp {
	case ProcedureSID:
		db = ap.sids
	case ProcedureSTAR:
		db = ap.stars
	case ProcedureApproach:
		db = ap.approaches
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRecord, rec.line[:min(len(rec.line), 8)])
	}

	r, err := splitLegRecord(rec.line)
	if err != nil {
		return err
	}

	leg := r.leg(ap.icao, ap.runways, src)
	h, err := ap.legs.Alloc(leg)
	if err != nil {
		return err
	}

	keys, isRunway := transitionKeys(leg.Transition, ap.runways)
	for _, key := range keys {
		db.add(leg.Procedure, key, h)

		if isRunway {
			switch rec.tp {
			case ProcedureSID:
				addToSet(ap.sidsByRunway, key, leg.Procedure)
			case ProcedureSTAR:
				addToSet(ap.starsByRunway, key, leg.Procedure)
			}
		}
	}
	return nil
}

func addToSet(m map[string]nameSet, key, name string) {
	if m[key] == nil {
		m[key] = make(nameSet)
	}
	m[key][name] = struct{}{}
}

///////////////////////////////////////////////////////////////////////////
// Queries

func (ap *Airport) ICAO() string       { return ap.icao }
func (ap *Airport) Status() LoadStatus { return ap.status }
func (ap *Airport) NumLegs() int       { return ap.legs.Len() }

// LoadErrors returns a description of each record that couldn't be
// loaded.
func (ap *Airport) LoadErrors() []string {
	return append([]string(nil), ap.errors...)
}

func (ap *Airport) procedure(db procedureDB, name, trans string) []Leg {
	if t, ok := db[name]; ok {
		if handles, ok := t[trans]; ok {
			return ap.legs.Gather(handles)
		}
	}
	return nil
}

// SID returns the legs of the given SID transition, in order. Runway
// transitions are keyed by normalized runway id, "NONE" is the common
// route for procedures without transitions.
func (ap *Airport) SID(name, trans string) []Leg { return ap.procedure(ap.sids, name, trans) }

func (ap *Airport) STAR(name, trans string) []Leg { return ap.procedure(ap.stars, name, trans) }

func (ap *Airport) Approach(name, trans string) []Leg {
	return ap.procedure(ap.approaches, name, trans)
}

// SIDsForRunway returns the SIDs that have a transition for the runway.
func (ap *Airport) SIDsForRunway(rwy string) []string {
	return ap.sidsByRunway[NormalizeRunwayId(rwy)].sorted()
}

func (ap *Airport) STARsForRunway(rwy string) []string {
	return ap.starsByRunway[NormalizeRunwayId(rwy)].sorted()
}

// transitions returns the procedure's transition keys that are (or
// aren't) runway ids.
func (ap *Airport) transitions(db procedureDB, name string, runways bool) []string {
	s := make(nameSet)
	for key := range db[name] {
		if _, ok := ap.runways[key]; ok == runways {
			s[key] = struct{}{}
		}
	}
	return s.sorted()
}

func (ap *Airport) RunwaysForSID(name string) []string  { return ap.transitions(ap.sids, name, true) }
func (ap *Airport) RunwaysForSTAR(name string) []string { return ap.transitions(ap.stars, name, true) }

// TransitionsForSID returns the SID's transitions that are not runway
// transitions; this includes "NONE" if it has a common route.
func (ap *Airport) TransitionsForSID(name string) []string {
	return ap.transitions(ap.sids, name, false)
}

func (ap *Airport) TransitionsForSTAR(name string) []string {
	return ap.transitions(ap.stars, name, false)
}

func allTransitions(db procedureDB) map[string][]string {
	m := make(map[string][]string, len(db))
	for name, trans := range db {
		m[name] = util.SortedMapKeys(trans)
	}
	return m
}

// AllSIDs returns all of the airport's SIDs along with all of their
// transition keys.
func (ap *Airport) AllSIDs() map[string][]string  { return allTransitions(ap.sids) }
func (ap *Airport) AllSTARs() map[string][]string { return allTransitions(ap.stars) }

func (ap *Airport) AllApproaches() []string { return util.SortedMapKeys(ap.approaches) }

// TransitionsForApproach returns all of the approach's transition keys,
// including runway transitions.
func (ap *Airport) TransitionsForApproach(name string) []string {
	return util.SortedMapKeys(ap.approaches[name])
}

func (ap *Airport) Runway(id string) (Runway, bool) {
	rwy, ok := ap.runways[NormalizeRunwayId(id)]
	return rwy, ok
}

// Runways returns a copy of the airport's runways, keyed by normalized
// runway id.
func (ap *Airport) Runways() map[string]Runway {
	return deep.MustCopy(ap.runways)
}
