// navdata/database_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/math"
)

// cifpLeg returns a procedure record whose main fix is given by the id,
// region, section and subsection columns in fix.
func cifpLeg(tag, proc, trans string, fix [4]string) string {
	f := make([]string, 38)
	for i := range f {
		f[i] = " "
	}
	f[0] = tag + ":010"
	f[2], f[3] = proc, trans
	copy(f[4:8], fix[:])
	f[11] = "TF"
	return strings.Join(f, ",")
}

func writeTestData(t *testing.T) (Paths, string) {
	t.Helper()
	dir := t.TempDir()
	paths := Paths{
		AptDat:       writeTestFile(t, dir, "apt.dat", testAptDat),
		EarthFix:     writeTestFile(t, dir, "earth_fix.dat", testEarthFix),
		EarthNav:     writeTestFile(t, dir, "earth_nav.dat", testEarthNav),
		DisableCache: true,
	}

	cifp := filepath.Join(dir, "CIFP")
	if err := os.Mkdir(cifp, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, cifp, "KSEA.dat", strings.Join([]string{
		"RWY:RW16L,     ,      ,00429,I,ISNQ ,3,054",
		"RWY:RW34R,     ,      ,00347, ,     , ,   ;N47255267,W122184212,0000;",
		cifpLeg("SID", "BANGR9", "RW16L", [4]string{"RW16L", "K1", "P", "G"}),
		cifpLeg("SID", "BANGR9", "RW16L", [4]string{"BANGR", "K1", "E", "A"}),
		cifpLeg("SID", "BANGR9", "RW16L", [4]string{"SEA", "K1", "D", " "}),
		cifpLeg("STAR", "CHINS5", "ALL", [4]string{"ZAXUS", "K1", "P", "C"}),
		cifpLeg("APPCH", "I16L", "", [4]string{"KSEA", "K1", "P", "A"}),
	}, "\n"))
	for _, icao := range []string{"KBFI", "KPAE"} {
		writeTestFile(t, cifp, icao+".dat", cifpLeg("SID", "TEST1", "ALL", [4]string{"BANGR", "K1", "E", "A"}))
	}
	writeTestFile(t, cifp, "KRNT.dat", cifpLeg("SID", "TEST1", "ALL", [4]string{"BANGR", "K1", "E", "A"})+
		"\nSID:020,5,TEST1\n")

	return paths, cifp
}

func loadTestDatabase(t *testing.T) (*Database, string) {
	t.Helper()
	paths, cifp := writeTestData(t)
	db, err := StartLoad(paths, nil).Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return db, cifp
}

func TestLoaderEndToEnd(t *testing.T) {
	db, cifp := loadTestDatabase(t)

	ap, err := db.LoadAirport("KSEA", aviation.AirportOptions{Dir: cifp}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 16L has no location in the procedure file, so it comes from apt.dat.
	rwy, ok := ap.Runway("16L")
	if !ok || rwy.Threshold != (math.Point2LL{-122.308, 47.4638}) || rwy.LandingSystemId != "ISNQ" {
		t.Errorf("16L = %+v, %v", rwy, ok)
	}

	legs := ap.SID("BANGR9", "16L")
	if len(legs) != 3 {
		t.Fatalf("SID(BANGR9, 16L) = %+v", legs)
	}
	if legs[0].Fix.Id != "16L" || legs[0].Fix.Type != aviation.FixRunway || legs[0].Fix.Location != rwy.Threshold {
		t.Errorf("runway fix = %+v", legs[0].Fix)
	}
	if legs[1].Fix.Type != aviation.FixWaypoint || legs[1].Fix.Location != (math.Point2LL{-122.6, 47.75}) {
		t.Errorf("enroute fix = %+v", legs[1].Fix)
	}
	if legs[2].Fix.Type != aviation.FixVORDME {
		t.Errorf("navaid fix = %+v", legs[2].Fix)
	}
	if nav, ok := db.Navaids().Navaid(legs[2].Fix.Navaid); !ok || nav.Frequency != 11680 {
		t.Errorf("navaid = %+v, %v", nav, ok)
	}
	if d := db.Navaids().Description(legs[2].Fix); d != "SEATTLE VORTAC" {
		t.Errorf("navaid description = %q", d)
	}

	star := ap.STAR("CHINS5", "34R")
	if len(star) != 1 || star[0].Fix.Area != "KSEA" || star[0].Fix.Location != (math.Point2LL{-122.3, 47.6}) {
		t.Errorf("STAR(CHINS5, 34R) = %+v", star)
	}

	appch := ap.Approach("I16L", "NONE")
	if loc, _ := db.AirportLocation("KSEA"); len(appch) != 1 || appch[0].Fix.Type != aviation.FixAirport ||
		appch[0].Fix.Location != loc {
		t.Errorf("Approach(I16L, NONE) = %+v", appch)
	}
}

func TestLoaderWait(t *testing.T) {
	paths, _ := writeTestData(t)
	l := StartLoad(paths, nil)

	var wg sync.WaitGroup
	dbs := make([]*Database, 4)
	for i := range dbs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dbs[i], _ = l.Wait()
		}()
	}
	wg.Wait()

	for _, db := range dbs {
		if db == nil || db != dbs[0] {
			t.Fatalf("Wait returned different databases")
		}
	}
	if len(dbs[0].LoadErrors()) != 0 {
		t.Errorf("unexpected load errors %q", dbs[0].LoadErrors())
	}
}

func TestLoaderErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		paths, _ := writeTestData(t)
		paths.EarthNav += ".missing"
		db, err := StartLoad(paths, nil).Wait()
		if db != nil || !errors.Is(err, aviation.ErrFileNotFound) {
			t.Errorf("Wait() = %v, %v; want ErrFileNotFound", db, err)
		}
	})

	t.Run("malformed rows", func(t *testing.T) {
		paths, _ := writeTestData(t)
		fix, err := os.ReadFile(paths.EarthFix)
		if err != nil {
			t.Fatal(err)
		}
		bad := strings.Replace(string(fix), "99\n", "bogus\n99\n", 1)
		if err := os.WriteFile(paths.EarthFix, []byte(bad), 0o644); err != nil {
			t.Fatal(err)
		}

		db, err := StartLoad(paths, nil).Wait()
		if err != nil {
			t.Fatalf("malformed rows shouldn't be fatal: %v", err)
		}
		if len(db.LoadErrors()) != 1 {
			t.Errorf("LoadErrors = %q", db.LoadErrors())
		}
	})
}

func TestProcedureCache(t *testing.T) {
	db, cifp := loadTestDatabase(t)

	if _, err := NewProcedureCache(db, ProcedureCacheOptions{Size: -1}, nil); !errors.Is(err, ErrInvalidCacheSize) {
		t.Errorf("expected ErrInvalidCacheSize, got %v", err)
	}

	pc, err := NewProcedureCache(db, ProcedureCacheOptions{Size: 2, Airport: aviation.AirportOptions{Dir: cifp}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ksea, err := pc.Airport("ksea")
	if err != nil || ksea.ICAO() != "KSEA" {
		t.Fatalf("Airport(ksea) = %v, %v", ksea, err)
	}
	if again, _ := pc.Airport("KSEA"); again != ksea {
		t.Errorf("second request should be served from the cache")
	}

	ap, err := pc.Airport("KXXX")
	if !errors.Is(err, aviation.ErrFileNotFound) || ap == nil || ap.Status() != aviation.StatusFileNotFound {
		t.Errorf("Airport(KXXX) = %v, %v", ap, err)
	}
	if pc.Len() != 1 {
		t.Errorf("failed loads shouldn't be cached: %q", pc.Cached())
	}

	// Partial loads are cached, and still report the error.
	for range 2 {
		if _, err := pc.Airport("KRNT"); !errors.Is(err, aviation.ErrPartialLoad) {
			t.Errorf("Airport(KRNT) error = %v", err)
		}
	}

	pc.Airport("KBFI")
	if cached := pc.Cached(); len(cached) != 2 || cached[0] != "KRNT" || cached[1] != "KBFI" {
		t.Errorf("Cached() = %q", cached)
	}

	pc.Purge()
	if pc.Len() != 0 {
		t.Errorf("Purge left %d airports", pc.Len())
	}
}

func TestProcedureCacheConcurrentLoads(t *testing.T) {
	db, cifp := loadTestDatabase(t)
	pc, err := NewProcedureCache(db, ProcedureCacheOptions{Airport: aviation.AirportOptions{Dir: cifp}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	aps := make([]*aviation.Airport, 16)
	for i := range aps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			aps[i], _ = pc.Airport("KPAE")
		}()
	}
	wg.Wait()

	for _, ap := range aps {
		if ap != aps[0] {
			t.Fatalf("concurrent requests loaded the airport more than once")
		}
	}
	if legs := aps[0].SID("TEST1", "NONE"); len(legs) != 0 {
		t.Errorf("KPAE has no runways, so ALL shouldn't expand: %+v", legs)
	}
	if legs := aps[0].SID("TEST1", "ALL"); len(legs) != 1 {
		t.Errorf("SID(TEST1, ALL) = %+v", legs)
	}
}
