// math/math_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"errors"
	"testing"
	"time"
)

func TestParseARINCLatLong(t *testing.T) {
	tests := []struct {
		name string
		lat  string
		lon  string
		want Point2LL
		ok   bool
	}{
		{"KSEA 16L", "N47275952", "W122182089", Point2LL{-122.305803, 47.466533}, true},
		{"southern/eastern", "S33562900", "E151101800", Point2LL{151.171667, -33.941389}, true},
		{"padded", " N47275952 ", " W122182089", Point2LL{-122.305803, 47.466533}, true},
		{"short latitude", "N4727595", "W122182089", Point2LL{}, false},
		{"bad hemisphere", "X47275952", "W122182089", Point2LL{}, false},
		{"lat hemisphere on lon", "N47275952", "N122182089", Point2LL{}, false},
		{"minutes out of range", "N47675952", "W122182089", Point2LL{}, false},
		{"non-numeric", "N4727AB52", "W122182089", Point2LL{}, false},
		{"empty", "", "", Point2LL{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseARINCPoint(tt.lat, tt.lon)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if Abs(p[0]-tt.want[0]) > 1e-4 || Abs(p[1]-tt.want[1]) > 1e-4 {
					t.Errorf("got %v, want %v", p, tt.want)
				}
			} else if !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("expected ErrInvalidCoordinate, got %v (%v)", err, p)
			}
		})
	}
}

func TestNMDistance2LL(t *testing.T) {
	// One degree of latitude is (very nearly) 60nm.
	d := NMDistance2LL(Point2LL{-122, 47}, Point2LL{-122, 48})
	if Abs(d-60) > 0.1 {
		t.Errorf("1 degree of latitude = %f nm, expected ~60", d)
	}
	if d := NMDistance2LL(Point2LL{10, 10}, Point2LL{10, 10}); d != 0 {
		t.Errorf("distance to self = %f", d)
	}
}

func TestHeading2LL(t *testing.T) {
	tests := []struct {
		a, b Point2LL
		want float32
	}{
		{Point2LL{0, 0}, Point2LL{0, 1}, 0},
		{Point2LL{0, 0}, Point2LL{1, 0}, 90},
		{Point2LL{0, 1}, Point2LL{0, 0}, 180},
		{Point2LL{1, 0}, Point2LL{0, 0}, 270},
	}
	for _, tt := range tests {
		if h := Heading2LL(tt.a, tt.b); Abs(h-tt.want) > 0.01 {
			t.Errorf("Heading2LL(%v, %v) = %f, want %f", tt.a, tt.b, h, tt.want)
		}
	}
}

func TestNormalizeHeading(t *testing.T) {
	for _, tt := range [][2]float32{{0, 0}, {360, 0}, {370, 10}, {-10, 350}, {725, 5}} {
		if h := NormalizeHeading(tt[0]); Abs(h-tt[1]) > 1e-4 {
			t.Errorf("NormalizeHeading(%f) = %f, want %f", tt[0], h, tt[1])
		}
	}
}

func TestMeanPoint2LL(t *testing.T) {
	m := MeanPoint2LL([]Point2LL{{-122, 47}, {-121, 48}})
	if m != (Point2LL{-121.5, 47.5}) {
		t.Errorf("mean = %v", m)
	}
	if MeanPoint2LL(nil) != (Point2LL{}) {
		t.Errorf("mean of no points should be zero")
	}
}

func TestMagneticVariation(t *testing.T) {
	date := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		p    Point2LL
		want float32
	}{
		// Seattle is about 15 degrees east; Boston about 14 west.
		{"KSEA", Point2LL{-122.309, 47.449}, 15.2},
		{"KBOS", Point2LL{-71.005, 42.364}, -14.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := MagneticVariation(tt.p, 0, date)
			if err != nil {
				t.Fatal(err)
			}
			if Abs(v-tt.want) > 1 {
				t.Errorf("got %f, want %f", v, tt.want)
			}
		})
	}
}

func TestMagVarString(t *testing.T) {
	for _, tt := range []struct {
		v    float32
		want string
	}{{15.26, "15.3E"}, {-14.2, "14.2W"}, {0, "0.0E"}} {
		if got := MagVarString(tt.v); got != tt.want {
			t.Errorf("MagVarString(%f) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
