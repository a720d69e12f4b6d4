// aviation/runway.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	gomath "math"
	"slices"
	"strings"

	"github.com/mmp/navdb/math"
	"github.com/mmp/navdb/util"
)

// Runway holds the data from a CIFP RWY record.
type Runway struct {
	Id                    string // normalized, e.g. "09L"
	GradientDeg           float32
	EllipsoidHeightM      float32
	ThresholdElevationFt  int
	TCHType               TCHType
	LandingSystemId       string
	LandingSystemCategory LandingSystemCategory
	TCHFt                 int
	Threshold             math.Point2LL
	DisplacedThresholdFt  int
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// NormalizeRunwayId returns the canonical form of a runway identifier: any
// "RW" prefix is removed and single-digit headings are zero-padded, so
// "RW9L", "9L" and "09L" all become "09L".
func NormalizeRunwayId(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 2 && id[:2] == "RW" && isDigit(id[2]) {
		id = id[2:]
	}
	if len(id) > 0 && isDigit(id[0]) && (len(id) == 1 || !isDigit(id[1])) {
		id = "0" + id
	}
	return id
}

// validRunwayId checks a normalized id: a two-digit heading with an
// optional side letter.
func validRunwayId(id string) bool {
	if len(id) < 2 || len(id) > 3 || !isDigit(id[0]) || !isDigit(id[1]) {
		return false
	}
	return len(id) == 2 || strings.IndexByte("LRC", id[2]) != -1
}

// parseRunwayRecord decodes a RWY record of the airport icao. The record
// has two ';'-separated parts: the runway's data and, optionally, its
// threshold location. When the location is missing, the threshold is
// taken from src; if src doesn't know the runway either, the record
// can't be used and ErrDatabase is returned.
func parseRunwayRecord(line, icao string, src NavDataSource) (Runway, error) {
	parts := strings.Split(line, ";")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		// Records may be ';'-terminated.
		parts = parts[:len(parts)-1]
	}

	fields := strings.Split(parts[0], arincFieldSeparator)
	if len(fields) != arincRunwayColsFirst {
		return Runway{}, fmt.Errorf("%w: runway record has %d fields, expected %d", ErrDatabase,
			len(fields), arincRunwayColsFirst)
	}

	_, name, ok := strings.Cut(fields[0], ":")
	name = strings.TrimSpace(name)
	if !ok || len(name) < 3 || name[:2] != "RW" || !isDigit(name[2]) {
		return Runway{}, fmt.Errorf("%w: %q: invalid runway identifier", ErrDatabase, name)
	}
	rwy := Runway{Id: NormalizeRunwayId(name)}
	if !validRunwayId(rwy.Id) {
		return Runway{}, fmt.Errorf("%w: %q: invalid runway identifier", ErrDatabase, name)
	}

	rwy.GradientDeg = atof(fields[1]) * 0.001
	rwy.EllipsoidHeightM = atof(fields[2]) * 0.1
	rwy.ThresholdElevationFt = atoi(fields[3])
	rwy.TCHType = ParseTCHType(util.FirstByte(fields[4]))
	rwy.LandingSystemId = strings.TrimSpace(fields[5])
	rwy.LandingSystemCategory = ParseLandingSystemCategory(util.FirstByte(fields[6]))
	rwy.TCHFt = atoi(fields[7])

	haveLocation := false
	if len(parts) == 2 {
		if coords := strings.Split(parts[1], arincFieldSeparator); len(coords) == arincRunwayColsCoord {
			// Coordinates that fail to parse come back as zero, which is
			// treated the same as a missing location.
			lat, _ := math.ParseARINCLatitude(coords[0])
			lon, _ := math.ParseARINCLongitude(coords[1])
			rwy.Threshold = math.Point2LL{lon, lat}
			rwy.DisplacedThresholdFt = atoi(coords[2])
			haveLocation = lat != 0 && lon != 0
		}
	}

	if !haveLocation {
		thr, ok := src.RunwayThreshold(icao, rwy.Id)
		if !ok {
			return Runway{}, fmt.Errorf("%w: %s/%s: no threshold location", ErrDatabase, icao, rwy.Id)
		}
		rwy.Threshold = thr.Location
		rwy.DisplacedThresholdFt = int(gomath.Round(float64(thr.DisplacedThresholdM * math.MetersToFeet)))
	}

	return rwy, nil
}

// expandRunwayMask returns the ids of the runways that a transition
// runway mask refers to: "ALL" is every runway, "09B" is every runway
// with heading 09, and otherwise the mask must be a runway id. The
// result is sorted.
func expandRunwayMask(mask string, runways map[string]Runway) []string {
	if mask == "ALL" {
		return util.SortedMapKeys(runways)
	}
	if _, ok := runways[mask]; ok {
		return []string{mask}
	}

	var ids []string
	if len(mask) > 1 && mask[len(mask)-1] == 'B' {
		heading := mask[:len(mask)-1]
		for id := range runways {
			if id[:len(id)-1] == heading {
				ids = append(ids, id)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

// transitionKeys returns the keys that a procedure transition is indexed
// under. Runway transitions expand to the matching runway ids; any other
// transition is indexed under its own name.
func transitionKeys(trans string, runways map[string]Runway) (keys []string, isRunway bool) {
	if ids := expandRunwayMask(NormalizeRunwayId(trans), runways); len(ids) > 0 {
		return ids, true
	}
	return []string{trans}, false
}
