// navdata/xpfile.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/math"
	"github.com/mmp/navdb/util"
)

// errSkipRow is returned by row parsers for well-formed rows that aren't
// of interest.
var errSkipRow = errors.New("skip row")

type xpFile[T any] struct {
	version, cycle int
	rows           []T
	errors         []string
}

// parseXPHeader recognizes the version line at the start of X-Plane data
// files, e.g. "1200 Version - data cycle 2305, build 20230424, ...".
func parseXPHeader(line string) (version, cycle int, ok bool) {
	f := strings.Fields(line)
	if len(f) < 8 || f[1] != "Version" || f[3] != "data" || f[4] != "cycle" || f[6] != "build" {
		return 0, 0, false
	}
	version, _ = strconv.Atoi(f[0])
	cycle, _ = strconv.Atoi(strings.TrimRight(f[5], ",."))
	return version, cycle, true
}

func loadXPFile[T any](path string, parseRow func(line string, version int) (T, error)) (*xpFile[T], error) {
	r, err := util.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", aviation.ErrFileNotFound, err)
	}
	defer r.Close()

	return parseXPFile(r, filepath.Base(path), parseRow)
}

func parseXPFile[T any](r io.Reader, name string, parseRow func(line string, version int) (T, error)) (*xpFile[T], error) {
	xf := &xpFile[T]{}

	var e util.ErrorLogger
	e.Push(name)
	err := util.ForEachLine(r, func(lineno int, line string) bool {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || line == "I" || line == "A":
			return true
		case line == "99":
			return false
		}
		if v, c, ok := parseXPHeader(line); ok {
			xf.version, xf.cycle = v, c
			return true
		}

		row, err := parseRow(line, xf.version)
		if errors.Is(err, errSkipRow) {
			return true
		} else if err != nil {
			e.Push(fmt.Sprintf("line %d", lineno))
			e.Error(err)
			e.Pop()
		} else {
			xf.rows = append(xf.rows, row)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	xf.errors = e.Errors()
	return xf, nil
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func parseLatLong(lat, lon string) (math.Point2LL, error) {
	la, err := parseFloat32(lat)
	if err != nil {
		return math.Point2LL{}, fmt.Errorf("%w: %q: bad latitude", ErrMalformedRow, lat)
	}
	lo, err := parseFloat32(lon)
	if err != nil {
		return math.Point2LL{}, fmt.Errorf("%w: %q: bad longitude", ErrMalformedRow, lon)
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return math.Point2LL{}, fmt.Errorf("%w: %s %s: %w", ErrMalformedRow, lat, lon, math.ErrInvalidCoordinate)
	}
	return math.Point2LL{lo, la}, nil
}

// xpFixTypes maps the fix type codes used by earth_awy.dat and
// earth_hold.dat to the types of the waypoints they refer to.
var xpFixTypes = map[int]aviation.FixType{
	2:  aviation.FixNDB,
	3:  aviation.FixVHFNavaid,
	11: aviation.FixWaypoint,
}

// xpFixTypeCode is the inverse of xpFixTypes for a resolved waypoint.
func xpFixTypeCode(t aviation.FixType) int {
	switch {
	case t == aviation.FixWaypoint:
		return 11
	case t == aviation.FixNDB:
		return 2
	case t.Matches(aviation.FixVHFNavaid):
		return 3
	default:
		return 0
	}
}
