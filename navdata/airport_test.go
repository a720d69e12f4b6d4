// navdata/airport_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import (
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/math"
)

const testAptDat = `I
1200 Generated by WorldEditor 2.5.0

1    433 0 0 KSEA Seattle Tacoma Intl
1302 city Seattle
1302 icao_code KSEA
1302 transition_alt 18000
1302 transition_level FL180
100 45.11 1 0 0.25 1 3 0 16L 47.46380000 -122.30800000    0.00 0 3 0 0 1 34R 47.43130000 -122.31170000  304.80 0 3 0 0 1
100 45.11 1 0 0.25 1 3 0 16C 47.46380000 -122.31100000    0.00 0 3 0 0 1 34C 47.43130000 -122.31400000    0.00 0 3 0 0 1
1    20 0 0 S43 Harvey Field
100 22.86 2 0 0.25 0 2 0 15 47.91100000 -122.10400000 0.00 0 1 0 0 0 33 47.90100000 -122.10100000 0.00 0 1 0 0 0
17 0 0 0 H1 Heliport
1302 icao_code XXXX
1    50 0 0 NORW No Runways
99
`

func approxEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func TestParseAptDat(t *testing.T) {
	db, err := parseAptDat(strings.NewReader(testAptDat), "apt.dat")
	if err != nil {
		t.Fatal(err)
	}
	if len(db.errors) != 0 {
		t.Errorf("unexpected errors: %q", db.errors)
	}
	if db.Version != 1200 || db.Len() != 2 {
		t.Errorf("version %d, %d airports", db.Version, db.Len())
	}

	ksea, ok := db.Airport("KSEA")
	if !ok {
		t.Fatal("KSEA not found")
	}
	if ksea.ElevationFt != 433 || ksea.TransitionAltitude != 18000 || ksea.TransitionLevel != 18000 {
		t.Errorf("KSEA = %+v", ksea)
	}
	if len(ksea.Runways) != 4 {
		t.Errorf("KSEA runways = %v", ksea.Runways)
	}
	wantLoc := math.Point2LL{-122.311175, 47.44755}
	if !approxEqual(ksea.Location[0], wantLoc[0]) || !approxEqual(ksea.Location[1], wantLoc[1]) {
		t.Errorf("KSEA location %v, want %v", ksea.Location, wantLoc)
	}

	r16l := ksea.Runways["16L"]
	if r16l.Threshold != (math.Point2LL{-122.308, 47.4638}) || r16l.End != ksea.Runways["34R"].Threshold {
		t.Errorf("16L = %+v", r16l)
	}
	if r34r := ksea.Runways["34R"]; r34r.DisplacedThresholdM != 304.8 || r34r.End != r16l.Threshold {
		t.Errorf("34R = %+v", r34r)
	}

	// No icao_code, so the airport's ident is used.
	if s43, ok := db.Airport("S43"); !ok || len(s43.Runways) != 2 {
		t.Errorf("S43 = %+v, %v", s43, ok)
	}
	if _, ok := db.RunwayThreshold("S43", "15"); !ok {
		t.Errorf("S43 runway 15 not found")
	}
	for _, icao := range []string{"XXXX", "NORW", "H1"} {
		if _, ok := db.Airport(icao); ok {
			t.Errorf("%s should not be loaded", icao)
		}
	}
}

func TestAirportDBQueries(t *testing.T) {
	db, err := parseAptDat(strings.NewReader(testAptDat), "apt.dat")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := db.AirportLocation("KSEA"); !ok {
		t.Errorf("KSEA location not found")
	}
	if _, ok := db.AirportLocation("KXXX"); ok {
		t.Errorf("KXXX should not be found")
	}

	thr, ok := db.RunwayThreshold("KSEA", "RW34R")
	if !ok || thr.DisplacedThresholdM != 304.8 || thr.Location != (math.Point2LL{-122.3117, 47.4313}) {
		t.Errorf("RunwayThreshold(KSEA, RW34R) = %+v, %v", thr, ok)
	}
	if _, ok := db.RunwayThreshold("KSEA", "16R"); ok {
		t.Errorf("16R should not be found")
	}

	// Airport returns a copy.
	ap, _ := db.Airport("KSEA")
	delete(ap.Runways, "16L")
	if _, ok := db.RunwayThreshold("KSEA", "16L"); !ok {
		t.Errorf("modifying the returned airport changed the database")
	}
}

func TestParseAptDatMalformed(t *testing.T) {
	apt := strings.Replace(testAptDat, "1    20 0 0 S43", "100 1 2 3\n1302 transition_alt high\nxyz\n1    20 0 0 S43", 1)
	db, err := parseAptDat(strings.NewReader(apt), "apt.dat")
	if err != nil {
		t.Fatal(err)
	}
	if len(db.errors) != 3 {
		t.Fatalf("errors = %q", db.errors)
	}
	if !strings.HasPrefix(db.errors[0], "apt.dat / line 11:") {
		t.Errorf("error %q should identify the line", db.errors[0])
	}
	if _, ok := db.Airport("S43"); !ok {
		t.Errorf("airports after the bad rows should be loaded")
	}
}

func TestLoadAirportDBCache(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		AptDat:   writeTestFile(t, dir, "apt.dat", testAptDat),
		CacheDir: filepath.Join(dir, "cache"),
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(paths.AptDat, old, old); err != nil {
		t.Fatal(err)
	}

	db, err := LoadAirportDB(paths, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.FromCache {
		t.Errorf("first load should parse apt.dat")
	}
	if _, err := os.Stat(filepath.Join(paths.CacheDir, airportCacheName)); err != nil {
		t.Fatalf("cache not written: %v", err)
	}

	cached, err := LoadAirportDB(paths, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cached.FromCache || cached.Len() != db.Len() || cached.Version != db.Version {
		t.Errorf("cached load: from cache %v, %d airports, version %d", cached.FromCache, cached.Len(), cached.Version)
	}
	a, _ := db.Airport("KSEA")
	b, _ := cached.Airport("KSEA")
	if a.Location != b.Location || len(a.Runways) != len(b.Runways) || a.Runways["34R"] != b.Runways["34R"] {
		t.Errorf("cached KSEA %+v differs from parsed %+v", b, a)
	}

	// A newer apt.dat invalidates the cache.
	newer := time.Now().Add(time.Hour)
	if err := os.Chtimes(paths.AptDat, newer, newer); err != nil {
		t.Fatal(err)
	}
	if db, err := LoadAirportDB(paths, nil); err != nil || db.FromCache {
		t.Errorf("stale cache used: %v", err)
	}

	paths.DisableCache = true
	if db, err := LoadAirportDB(paths, nil); err != nil || db.FromCache {
		t.Errorf("cache used when disabled: %v", err)
	}
}

func TestLoadAirportDBMissingFile(t *testing.T) {
	_, err := LoadAirportDB(Paths{AptDat: filepath.Join(t.TempDir(), "apt.dat"), DisableCache: true}, nil)
	if !errors.Is(err, aviation.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
