// aviation/fix.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"strings"

	"github.com/mmp/navdb/math"
	"github.com/mmp/navdb/util"
)

// FixType is a bitmask of the kinds of navigationally significant points.
// A composite navaid (e.g., a VOR/DME) has a single bit of its own.
type FixType uint32

const (
	FixNone         FixType = 0
	FixWaypoint     FixType = 1
	FixNDB          FixType = 2
	FixVOR          FixType = 4
	FixILSLoc       FixType = 8
	FixILSLocOnly   FixType = 16
	FixILSGS        FixType = 32
	FixILSFull      FixType = 64
	FixDME          FixType = 128
	FixDMEOnly      FixType = 256
	FixVORDME       FixType = 512
	FixILSDME       FixType = 1024
	FixOuterMarker  FixType = 2048
	FixMiddleMarker FixType = 4096
	FixInnerMarker  FixType = 8192
	FixRunway       FixType = 16384
	FixAirport      FixType = 32768

	// FixNavaid covers every radio navaid type along with plain waypoints.
	FixNavaid FixType = 2047
	// FixVHFNavaid is every navaid that isn't an NDB or a waypoint.
	FixVHFNavaid = FixNavaid - FixWaypoint - FixNDB
	FixAny       FixType = 1<<16 - 1
)

func (t FixType) String() string {
	switch t {
	case FixNone:
		return "none"
	case FixWaypoint:
		return "waypoint"
	case FixNDB:
		return "NDB"
	case FixVOR:
		return "VOR"
	case FixILSLoc:
		return "ILS localizer"
	case FixILSLocOnly:
		return "localizer only"
	case FixILSGS:
		return "glideslope"
	case FixILSFull:
		return "ILS"
	case FixDME:
		return "DME"
	case FixDMEOnly:
		return "DME only"
	case FixVORDME:
		return "VOR/DME"
	case FixILSDME:
		return "ILS/DME"
	case FixOuterMarker:
		return "outer marker"
	case FixMiddleMarker:
		return "middle marker"
	case FixInnerMarker:
		return "inner marker"
	case FixRunway:
		return "runway"
	case FixAirport:
		return "airport"
	default:
		return "mixed"
	}
}

// Matches reports whether t has any of the bits in mask set.
func (t FixType) Matches(mask FixType) bool {
	return t&mask != 0
}

// EnrouteArea is the area code of fixes that don't belong to a terminal
// area.
const EnrouteArea = "ENRT"

// NavaidRef is a handle to the frequency and range details of a radio
// navaid held by the navaid database. The zero value refers to nothing.
type NavaidRef int32

const NoNavaid NavaidRef = 0

func (r NavaidRef) Valid() bool { return r > 0 }

// Waypoint is a resolved fix.
type Waypoint struct {
	Id       string
	Type     FixType
	Location math.Point2LL
	// Area is either EnrouteArea or the ICAO code of the airport whose
	// terminal area the fix belongs to.
	Area   string
	Region string
	Navaid NavaidRef
}

// Resolved reports whether the waypoint was found in the navigation data.
func (w Waypoint) Resolved() bool {
	return w.Type != FixNone
}

// FixReference is how procedure records refer to a fix: its identifier
// plus the ICAO region code and the ARINC section/subsection of the
// record that defines it.
type FixReference struct {
	Id         string
	Region     string
	Section    byte
	Subsection byte
}

// RunwayThreshold is the collaborator's view of a runway end.
type RunwayThreshold struct {
	Location            math.Point2LL
	DisplacedThresholdM float32
}

// NavDataSource provides the fix, airport and runway data that procedure
// records are resolved against. Implementations must be fully loaded
// before they are handed to LoadAirport.
type NavDataSource interface {
	// LookupWaypoints returns the fixes named id in the given area.
	// Candidates are restricted to the given ICAO region when it is
	// non-empty and to fixes whose type matches mask.
	LookupWaypoints(id, area, region string, mask FixType) []Waypoint
	AirportLocation(icao string) (math.Point2LL, bool)
	RunwayThreshold(icao, rwy string) (RunwayThreshold, bool)
}

// resolveFix turns a fix reference from a procedure of the airport icao
// into a located waypoint. References that can't be resolved return a
// Waypoint with Type FixNone that only carries the reference's id and
// region.
func resolveFix(ref FixReference, icao string, runways map[string]Runway, src NavDataSource) Waypoint {
	unresolved := Waypoint{Id: ref.Id, Region: ref.Region}
	area, mask := EnrouteArea, FixAny

	switch ref.Section {
	case 'D':
		mask = FixVHFNavaid
		if ref.Subsection == 'B' {
			mask = FixNDB
		}

	case 'P':
		switch ref.Subsection {
		case 'A':
			if p, ok := src.AirportLocation(icao); ok {
				return Waypoint{
					Id:       icao,
					Type:     FixAirport,
					Location: p,
					Area:     icao,
					Region:   ref.Region,
				}
			}
			// Otherwise look for it among the airport's terminal fixes.
		case 'G':
			if wp, ok := runwayWaypoint(ref, icao, runways); ok {
				return wp
			}
			return unresolved
		}
		area = icao

	case 'E':

	default:
		return unresolved
	}

	if ref.Id == "" {
		return unresolved
	}
	// Ambiguous references take the first candidate, in the order the
	// navigation data provides them.
	if wps := src.LookupWaypoints(ref.Id, area, ref.Region, mask); len(wps) > 0 {
		wp := wps[0]
		wp.Id = ref.Id
		return wp
	}
	return unresolved
}

// runwayWaypoint returns the threshold of the referenced runway. The
// waypoint's id is the normalized runway id, as used by Airport.Runway.
func runwayWaypoint(ref FixReference, icao string, runways map[string]Runway) (Waypoint, bool) {
	id := NormalizeRunwayId(ref.Id)
	if rwy, ok := runways[id]; ok {
		return Waypoint{
			Id:       id,
			Type:     FixRunway,
			Location: rwy.Threshold,
			Area:     icao,
			Region:   ref.Region,
		}, true
	}
	return Waypoint{}, false
}

func parseFixReference(fields []string) FixReference {
	return FixReference{
		Id:         strings.TrimSpace(fields[0]),
		Region:     strings.TrimSpace(fields[1]),
		Section:    util.FirstByte(fields[2]),
		Subsection: util.FirstByte(fields[3]),
	}
}
