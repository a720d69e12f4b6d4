// aviation/leg.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"

	"github.com/mmp/navdb/util"
)

// Leg is a single segment of a SID, STAR or approach.
type Leg struct {
	RouteType      byte
	Procedure      string
	Transition     string
	Fix            Waypoint
	FixDescription string
	TurnDirection  TurnDirection
	RNP            float32 // nm
	PathTerminator string  // e.g. "TF", "CF", "HM"
	Overfly        bool

	RecommendedNavaid Waypoint
	// The record gives these in thousandths of a nm, tenths of a degree
	// and tenths of a nm; they're stored scaled to the units noted.
	ArcRadius float32 // nm
	Theta     float32 // degrees, bearing from the recommended navaid
	Rho       float32 // nm, distance from the recommended navaid

	OutboundCourse     float32 // degrees
	OutboundCourseTrue bool
	// OutboundDistance is in nm, or in minutes if OutboundIsTime is set.
	OutboundDistance float32
	OutboundIsTime   bool

	AltitudeRestriction AltitudeRestrictionMode
	Altitude1           int // feet
	Altitude2           int // feet
	TransitionAltitude  int // feet

	SpeedRestriction SpeedRestrictionMode
	SpeedLimit       int // knots

	VerticalAngle float32 // degrees
	VerticalScale int     // feet

	CenterFix Waypoint

	MultipleCode   byte
	GNSSIndicator  byte
	RouteQualifier [2]byte
}

// legRecord is a procedure record that has been split into its columns
// but not yet resolved against the navigation data.
type legRecord []string

func splitLegRecord(line string) (legRecord, error) {
	f := strings.Split(line, arincFieldSeparator)
	if len(f) != arincLegFieldCount {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrFieldCount, len(f), arincLegFieldCount)
	}
	return legRecord(f), nil
}

func (r legRecord) procedure() string { return strings.TrimSpace(r[2]) }

// transition returns the transition name; procedures without
// transitions are filed under "NONE".
func (r legRecord) transition() string {
	if t := strings.TrimSpace(r[3]); t != "" {
		return t
	}
	return "NONE"
}

// leg decodes the record's columns, resolving its three fix references
// relative to the airport icao.
func (r legRecord) leg(icao string, runways map[string]Runway, src NavDataSource) Leg {
	leg := Leg{
		RouteType:      util.FirstByte(r[1]),
		Procedure:      r.procedure(),
		Transition:     r.transition(),
		FixDescription: r[8],
		TurnDirection:  ParseTurnDirection(util.FirstByte(r[9])),
		RNP:            decodeRNP(r[10]),
		PathTerminator: strings.TrimSpace(r[11]),
		Overfly:        util.FirstByte(r[12]) == 'Y',

		// Arc radius is given in thousandths of a nm; theta and rho in
		// tenths.
		ArcRadius: atof(r[17]) * 0.001,
		Theta:     atof(r[18]) * 0.1,
		Rho:       atof(r[19]) * 0.1,

		AltitudeRestriction: ParseAltitudeRestrictionMode(util.FirstByte(r[22])),
		Altitude1:           decodeAltitude(r[23]),
		Altitude2:           decodeAltitude(r[24]),
		TransitionAltitude:  atoi(r[25]),

		SpeedRestriction: ParseSpeedRestrictionMode(util.FirstByte(r[26])),
		SpeedLimit:       atoi(r[27]),
		VerticalAngle:    atof(r[28]) * 0.01,
		VerticalScale:    atoi(r[29]),

		MultipleCode:   util.FirstByte(r[34]),
		GNSSIndicator:  util.FirstByte(r[35]),
		RouteQualifier: [2]byte{util.FirstByte(r[36]), util.FirstByte(r[37])},
	}
	leg.OutboundCourse, leg.OutboundCourseTrue = decodeCourse(r[20])
	leg.OutboundDistance, leg.OutboundIsTime = decodeDistanceTime(r[21])

	leg.Fix = resolveFix(parseFixReference(r[4:8]), icao, runways, src)
	leg.RecommendedNavaid = resolveFix(parseFixReference(r[13:17]), icao, runways, src)
	leg.CenterFix = resolveFix(parseFixReference(r[30:34]), icao, runways, src)

	return leg
}
