// aviation/arinc424.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"strconv"
	"strings"

	"github.com/mmp/navdb/math"
	"github.com/mmp/navdb/util"
)

// Decoders for the columns of X-Plane's comma-separated rendition of
// ARINC 424 procedure records. None of them fail: malformed input decodes
// to the zero value or the documented default.

const (
	arincFieldSeparator  = ","
	arincLegFieldCount   = 38
	arincRunwayColsFirst = 8
	arincRunwayColsCoord = 3
	maxProcedureTagLen   = 5
)

type ProcedureType int

const (
	ProcedureNone ProcedureType = iota
	ProcedureSID
	ProcedureSTAR
	ProcedureApproach
	ProcedurePRDAT
	ProcedureRunway
)

func (p ProcedureType) String() string {
	return []string{"NONE", "SID", "STAR", "APPCH", "PRDAT", "RWY"}[int(p)]
}

// ParseProcedureType classifies a record by its leading tag: the
// characters before the first ':', considering at most five of them.
func ParseProcedureType(line string) ProcedureType {
	n := 0
	for n < len(line) && n < maxProcedureTagLen && line[n] != ':' {
		n++
	}

	switch line[:n] {
	case "SID":
		return ProcedureSID
	case "STAR":
		return ProcedureSTAR
	case "APPCH":
		return ProcedureApproach
	case "PRDAT":
		return ProcedurePRDAT
	case "RWY":
		return ProcedureRunway
	default:
		return ProcedureNone
	}
}

type TurnDirection int

const (
	TurnEither TurnDirection = iota
	TurnLeft
	TurnRight
)

func (t TurnDirection) String() string {
	return []string{"either", "left", "right"}[int(t)]
}

func ParseTurnDirection(c byte) TurnDirection {
	switch c {
	case 'L':
		return TurnLeft
	case 'R':
		return TurnRight
	default:
		return TurnEither
	}
}

type AltitudeRestrictionMode int

const (
	AltitudeAt AltitudeRestrictionMode = iota
	AltitudeAtOrAbove
	AltitudeAtOrBelow
	AltitudeWithin
	AltitudeSIDAtOrAbove
	AltitudeGSAt
	AltitudeGSAtOrAbove
	AltitudeGSInterceptAt
	AltitudeGSInterceptAtOrAbove
	AltitudeStepdownAtAtOrAbove
	AltitudeStepdownAtAt
	AltitudeStepdownAtAtOrBelow
)

func (m AltitudeRestrictionMode) String() string {
	return []string{"at", "at or above", "at or below", "within", "SID at or above",
		"glideslope at", "glideslope at or above", "glideslope intercept at",
		"glideslope intercept at or above", "stepdown at, at or above",
		"stepdown at, at", "stepdown at, at or below"}[int(m)]
}

func ParseAltitudeRestrictionMode(c byte) AltitudeRestrictionMode {
	switch c {
	case '+':
		return AltitudeAtOrAbove
	case '-':
		return AltitudeAtOrBelow
	case 'B':
		return AltitudeWithin
	case 'C':
		return AltitudeSIDAtOrAbove
	case 'G':
		return AltitudeGSAt
	case 'H':
		return AltitudeGSAtOrAbove
	case 'I':
		return AltitudeGSInterceptAt
	case 'J':
		return AltitudeGSInterceptAtOrAbove
	case 'V':
		return AltitudeStepdownAtAtOrAbove
	case 'X':
		return AltitudeStepdownAtAt
	case 'Y':
		return AltitudeStepdownAtAtOrBelow
	default:
		return AltitudeAt
	}
}

type SpeedRestrictionMode int

const (
	SpeedAt SpeedRestrictionMode = iota
	SpeedAtOrAbove
	SpeedAtOrBelow
)

func (m SpeedRestrictionMode) String() string {
	return []string{"at", "at or above", "at or below"}[int(m)]
}

func ParseSpeedRestrictionMode(c byte) SpeedRestrictionMode {
	switch c {
	case '+':
		return SpeedAtOrAbove
	case '-':
		return SpeedAtOrBelow
	default:
		return SpeedAt
	}
}

// TCHType identifies what the threshold crossing height of a runway is
// referenced to.
type TCHType int

const (
	TCHNone TCHType = iota
	TCHILSMLS
	TCHRNAV
	TCHVGSI
	TCHDefault
)

func (t TCHType) String() string {
	return []string{"none", "ILS/MLS", "RNAV", "VGSI", "default"}[int(t)]
}

func ParseTCHType(c byte) TCHType {
	switch c {
	case 'I':
		return TCHILSMLS
	case 'R':
		return TCHRNAV
	case 'V':
		return TCHVGSI
	case 'D':
		return TCHDefault
	default:
		return TCHNone
	}
}

type LandingSystemCategory int

const (
	LSNone LandingSystemCategory = iota
	LSILSLocalizerOnly
	LSCatI
	LSCatII
	LSCatIII
	LSIGS
	LSLDAWithGS
	LSLDANoGS
	LSSDFWithGS
	LSSDFNoGS
)

func (c LandingSystemCategory) String() string {
	return []string{"none", "ILS localizer only", "CAT I", "CAT II", "CAT III", "IGS",
		"LDA with glideslope", "LDA", "SDF with glideslope", "SDF"}[int(c)]
}

func ParseLandingSystemCategory(c byte) LandingSystemCategory {
	switch c {
	case '0':
		return LSILSLocalizerOnly
	case '1':
		return LSCatI
	case '2':
		return LSCatII
	case '3':
		return LSCatIII
	case 'I':
		return LSIGS
	case 'L':
		return LSLDAWithGS
	case 'A':
		return LSLDANoGS
	case 'S':
		return LSSDFWithGS
	case 'F':
		return LSSDFNoGS
	default:
		return LSNone
	}
}

///////////////////////////////////////////////////////////////////////////
// Numeric columns

func parseUint(s string) (int, bool) {
	if s == "" || !util.IsAllNumbers(s) {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

// atoi and atof are lenient: blank or malformed columns decode to zero.
func atoi(s string) int {
	v, _ := util.Atoi(s)
	return v
}

func atof(s string) float32 {
	v, _ := util.Atof(s)
	return float32(v)
}

// decodeRNP decodes the three-character RNP column: a two-digit mantissa
// followed by a single digit giving the negative power of ten, so "031"
// is 0.3nm.
func decodeRNP(s string) float32 {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return 0
	}
	mant, ok := parseUint(s[:2])
	exp, eok := parseUint(s[2:])
	if !ok || !eok {
		return 0
	}
	return float32(mant) / math.Pow10(exp)
}

// decodeCourse decodes the four-character outbound course column. A
// trailing 'T' denotes a true course given in whole degrees by the first
// three characters; otherwise the course is magnetic in tenths of a
// degree.
func decodeCourse(s string) (deg float32, isTrue bool) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, false
	}
	if s[3] == 'T' {
		v, ok := parseUint(s[:3])
		if !ok {
			return 0, false
		}
		return float32(v), true
	}
	v, ok := parseUint(s)
	if !ok {
		return 0, false
	}
	return float32(v) * 0.1, false
}

// decodeDistanceTime decodes the four-character route distance / holding
// time column. A leading 'T' means the value is a time in tenths of a
// minute; otherwise it is a distance in tenths of a nautical mile.
func decodeDistanceTime(s string) (v float32, isTime bool) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, false
	}
	if s[0] == 'T' {
		t, ok := parseUint(s[1:])
		if !ok {
			return 0, false
		}
		return float32(t) * 0.1, true
	}
	d, ok := parseUint(s)
	if !ok {
		return 0, false
	}
	return float32(d) * 0.1, false
}

// decodeAltitude decodes a five-character altitude column: either a
// flight level ("FL180") or a plain number of feet. Plain numbers are
// returned as is.
func decodeAltitude(s string) int {
	s = strings.TrimSpace(s)
	if len(s) != 5 {
		return 0
	}
	if s[:2] == "FL" {
		if fl, ok := parseUint(s[2:]); ok {
			return 100 * fl
		}
		return 0
	}
	if alt, ok := parseUint(s); ok {
		return alt
	}
	return 0
}
