// aviation/runway_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mmp/navdb/math"
)

func TestNormalizeRunwayId(t *testing.T) {
	for in, want := range map[string]string{
		"09L":   "09L",
		"9L":    "09L",
		"9":     "09",
		"27":    "27",
		"RW9L":  "09L",
		"RW16L": "16L",
		" 4R ":  "04R",
		"RWALL": "RWALL",
		"ALL":   "ALL",
		"BANGR": "BANGR",
		"9B":    "09B",
		"":      "",
	} {
		if got := NormalizeRunwayId(in); got != want {
			t.Errorf("NormalizeRunwayId(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRunwayRecord(t *testing.T) {
	src := newFakeNavData()

	tests := []struct {
		name    string
		line    string
		want    Runway
		wantErr bool
	}{
		{
			name: "with threshold location",
			line: "RWY:RW16L,-0150,-00170,00429,I,ISNQ ,3,054;N47275952,W122182089,0400;",
			want: Runway{
				Id:                    "16L",
				GradientDeg:           -0.15,
				EllipsoidHeightM:      -17,
				ThresholdElevationFt:  429,
				TCHType:               TCHILSMLS,
				LandingSystemId:       "ISNQ",
				LandingSystemCategory: LSCatIII,
				TCHFt:                 54,
				Threshold:             math.Point2LL{-122.305803, 47.466533},
				DisplacedThresholdFt:  400,
			},
		},
		{
			name: "unterminated",
			line: "RWY:RW16L,     ,      ,00429, ,     , ,   ;N47275952,W122182089,0000",
			want: Runway{
				Id:                   "16L",
				ThresholdElevationFt: 429,
				Threshold:            math.Point2LL{-122.305803, 47.466533},
			},
		},
		{
			name: "missing location uses navigation data",
			line: "RWY:RW34R,     ,      ,00347,R,     , ,050",
			want: Runway{
				Id:                   "34R",
				ThresholdElevationFt: 347,
				TCHType:              TCHRNAV,
				TCHFt:                50,
				Threshold:            math.Point2LL{-122.3117, 47.4313},
				DisplacedThresholdFt: 1000,
			},
		},
		{
			name: "zero location uses navigation data",
			line: "RWY:RW16L,     ,      ,00429, ,     , ,   ;N00000000,W122182089,0250;",
			want: Runway{
				Id:                   "16L",
				ThresholdElevationFt: 429,
				Threshold:            math.Point2LL{-122.3080, 47.4638},
			},
		},
		{
			name:    "missing location and unknown to navigation data",
			line:    "RWY:RW16C,     ,      ,00429, ,     , ,   ",
			wantErr: true,
		},
		{
			name:    "wrong field count",
			line:    "RWY:RW16L,     ,      ,00429, ,     ;N47275952,W122182089,0000;",
			wantErr: true,
		},
		{
			name:    "not a runway id",
			line:    "RWY:HELI1,     ,      ,00429, ,     , ,   ;N47275952,W122182089,0000;",
			wantErr: true,
		},
		{
			name:    "bad side letter",
			line:    "RWY:RW16X,     ,      ,00429, ,     , ,   ;N47275952,W122182089,0000;",
			wantErr: true,
		},
		{
			name:    "no name separator",
			line:    "RWYRW16L,     ,      ,00429, ,     , ,   ;N47275952,W122182089,0000;",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rwy, err := parseRunwayRecord(tt.line, "KSEA", src)
			if tt.wantErr {
				if !errors.Is(err, ErrDatabase) {
					t.Errorf("expected ErrDatabase, got %v (%+v)", err, rwy)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !approxEqual(rwy.Threshold[0], tt.want.Threshold[0]) || !approxEqual(rwy.Threshold[1], tt.want.Threshold[1]) {
				t.Errorf("threshold %v, want %v", rwy.Threshold, tt.want.Threshold)
			}
			if !approxEqual(rwy.GradientDeg, tt.want.GradientDeg) || !approxEqual(rwy.EllipsoidHeightM, tt.want.EllipsoidHeightM) {
				t.Errorf("gradient/height %f/%f, want %f/%f", rwy.GradientDeg, rwy.EllipsoidHeightM,
					tt.want.GradientDeg, tt.want.EllipsoidHeightM)
			}
			rwy.Threshold, rwy.GradientDeg, rwy.EllipsoidHeightM = tt.want.Threshold, tt.want.GradientDeg, tt.want.EllipsoidHeightM
			if rwy != tt.want {
				t.Errorf("got %+v, want %+v", rwy, tt.want)
			}
		})
	}
}

func TestExpandRunwayMask(t *testing.T) {
	runways := map[string]Runway{"09L": {Id: "09L"}, "09R": {Id: "09R"}, "27": {Id: "27"}}

	tests := []struct {
		mask string
		want []string
	}{
		{"09B", []string{"09L", "09R"}},
		{"ALL", []string{"09L", "09R", "27"}},
		{"09L", []string{"09L"}},
		{"27", []string{"27"}},
		{"27C", nil},
		{"27B", nil},
		{"B", nil},
		{"BANGR", nil},
	}
	for _, tt := range tests {
		t.Run(tt.mask, func(t *testing.T) {
			if got := expandRunwayMask(tt.mask, runways); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expandRunwayMask(%q) = %q, want %q", tt.mask, got, tt.want)
			}
		})
	}

	// Only the two 09 runways are in this table.
	runways = map[string]Runway{"09L": {Id: "09L"}, "09R": {Id: "09R"}}
	if got := expandRunwayMask("ALL", runways); !reflect.DeepEqual(got, []string{"09L", "09R"}) {
		t.Errorf("expandRunwayMask(ALL) = %q", got)
	}
}

func TestTransitionKeys(t *testing.T) {
	runways := map[string]Runway{"09L": {Id: "09L"}, "09R": {Id: "09R"}}

	tests := []struct {
		trans    string
		want     []string
		isRunway bool
	}{
		{"RW09L", []string{"09L"}, true},
		{"RW9L", []string{"09L"}, true},
		{"RW09B", []string{"09L", "09R"}, true},
		{"ALL", []string{"09L", "09R"}, true},
		{"09L", []string{"09L"}, true},
		{"RW27C", []string{"RW27C"}, false},
		{"BANGR", []string{"BANGR"}, false},
		{"NONE", []string{"NONE"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.trans, func(t *testing.T) {
			got, isRunway := transitionKeys(tt.trans, runways)
			if !reflect.DeepEqual(got, tt.want) || isRunway != tt.isRunway {
				t.Errorf("transitionKeys(%q) = %q, %v; want %q, %v", tt.trans, got, isRunway, tt.want, tt.isRunway)
			}
		})
	}
}
