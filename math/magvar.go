// math/magvar.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// MagneticVariation returns the World Magnetic Model's declination at the
// point and altitude at time t, in degrees; east is positive.
func MagneticVariation(p Point2LL, altFt float32, t time.Time) (float32, error) {
	loc := egm96.NewLocationGeodetic(float64(p.Latitude()), float64(p.Longitude()), float64(altFt*FeetToMeters))
	mag, err := wmm.CalculateWMMMagneticField(loc, t)
	if err != nil {
		return 0, err
	}
	return float32(mag.D()), nil
}

// MagVarString formats a magnetic variation the way charts do, e.g.
// "15.3E".
func MagVarString(v float32) string {
	if v < 0 {
		return fmt.Sprintf("%.1fW", -v)
	}
	return fmt.Sprintf("%.1fE", v)
}
