// math/latlong.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"errors"
	"fmt"
	gomath "math"
	"strconv"
	"strings"
)

const NMPerLatitude = 60

const NauticalMilesToFeet = 6076.12
const FeetToNauticalMiles = 1 / NauticalMilesToFeet
const MetersToFeet = 3.28084
const FeetToMeters = 1 / MetersToFeet

var ErrInvalidCoordinate = errors.New("Invalid ARINC 424 coordinate")

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float32

func (p Point2LL) Longitude() float32 {
	return p[0]
}

func (p Point2LL) Latitude() float32 {
	return p[1]
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// DMSString returns the position in degrees minutes, seconds, e.g.
// N039.51.39.243,W075.16.29.511
func (p Point2LL) DMSString() string {
	format := func(v float32) string {
		s := fmt.Sprintf("%03d", int(v))
		v -= Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= Floor(v)
		v *= 1000
		s += fmt.Sprintf(".%03d", int(v))
		return s
	}

	var s string
	if p[1] > 0 {
		s = "N"
	} else {
		s = "S"
	}
	s += format(Abs(p[1]))

	if p[0] > 0 {
		s += ",E"
	} else {
		s += ",W"
	}
	s += format(Abs(p[0]))

	return s
}

// ParseARINCLatitude parses latitudes in the ARINC 424 "N47265700" form:
// hemisphere, then two digits each of degrees, minutes, seconds and
// hundredths of a second.
func ParseARINCLatitude(s string) (float32, error) {
	return parseARINCAngle(strings.TrimSpace(s), 'N', 'S', 2, 90)
}

// ParseARINCLongitude parses longitudes in the ARINC 424 "W122182600"
// form; it is the same as latitudes but with three degree digits.
func ParseARINCLongitude(s string) (float32, error) {
	return parseARINCAngle(strings.TrimSpace(s), 'E', 'W', 3, 180)
}

func parseARINCAngle(s string, pos, neg byte, degDigits int, limit float64) (float32, error) {
	if len(s) != 1+degDigits+6 || (s[0] != pos && s[0] != neg) {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidCoordinate)
	}

	field := func(start, n int) (float64, bool) {
		v, err := strconv.Atoi(s[start : start+n])
		return float64(v), err == nil && v >= 0
	}
	deg, ok0 := field(1, degDigits)
	min, ok1 := field(1+degDigits, 2)
	sec, ok2 := field(3+degDigits, 2)
	hsec, ok3 := field(5+degDigits, 2)
	if !ok0 || !ok1 || !ok2 || !ok3 || min >= 60 || sec >= 60 {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidCoordinate)
	}

	v := deg + min/60 + (sec+hsec/100)/3600
	if v > limit {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidCoordinate)
	}
	if s[0] == neg {
		v = -v
	}
	return float32(v), nil
}

// ParseARINCPoint parses an ARINC 424 latitude/longitude pair.
func ParseARINCPoint(lat, lon string) (Point2LL, error) {
	la, err := ParseARINCLatitude(lat)
	if err != nil {
		return Point2LL{}, err
	}
	lo, err := ParseARINCLongitude(lon)
	if err != nil {
		return Point2LL{}, err
	}
	return Point2LL{lo, la}, nil
}

// NMDistance2LL returns the great-circle distance between two points in
// nautical miles.
func NMDistance2LL(a Point2LL, b Point2LL) float32 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	const R = 6371000 // metres
	rad := func(d float64) float64 { return float64(d) / 180 * gomath.Pi }
	lat1, lon1 := rad(float64(a[1])), rad(float64(a[0]))
	lat2, lon2 := rad(float64(b[1])), rad(float64(b[0]))
	dlat, dlon := lat2-lat1, lon2-lon1

	// Rounding can push x slightly past 1 for antipodal points.
	x := Clamp(Sqr(gomath.Sin(dlat/2))+gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2)), 0, 1)
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	dm := R * c // in metres

	return float32(dm * 0.000539957)
}

// Heading2LL returns the initial true bearing in degrees from a to b.
func Heading2LL(a Point2LL, b Point2LL) float32 {
	lat1, lon1 := float64(Radians(a[1])), float64(Radians(a[0]))
	lat2, lon2 := float64(Radians(b[1])), float64(Radians(b[0]))
	dlon := lon2 - lon1

	y := gomath.Sin(dlon) * gomath.Cos(lat2)
	x := gomath.Cos(lat1)*gomath.Sin(lat2) - gomath.Sin(lat1)*gomath.Cos(lat2)*gomath.Cos(dlon)
	return NormalizeHeading(Degrees(float32(gomath.Atan2(y, x))))
}

// MeanPoint2LL returns the component-wise average of the given points, which
// is a fine approximation for points that are close together (e.g., the
// runway thresholds of a single airport).
func MeanPoint2LL(pts []Point2LL) Point2LL {
	if len(pts) == 0 {
		return Point2LL{}
	}
	var lat, lon float64
	for _, p := range pts {
		lon += float64(p[0])
		lat += float64(p[1])
	}
	n := float64(len(pts))
	return Point2LL{float32(lon / n), float32(lat / n)}
}
