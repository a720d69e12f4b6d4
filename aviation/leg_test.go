// aviation/leg_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"strings"
	"testing"
)

// legFields returns the columns of a procedure record with every column
// blank apart from the tag; tests fill in what they need.
func legFields(tag string) []string {
	f := make([]string, arincLegFieldCount)
	for i := range f {
		f[i] = " "
	}
	f[0] = tag + ":010"
	return f
}

// legLine returns a procedure record for the given procedure and
// transition whose main fix is fix, an enroute waypoint.
func legLine(tag, proc, trans, fix string) string {
	f := legFields(tag)
	f[2], f[3] = proc, trans
	f[4], f[5], f[6], f[7] = fix, "K1", "E", "A"
	f[11] = "TF"
	return strings.Join(f, ",")
}

func TestSplitLegRecord(t *testing.T) {
	if _, err := splitLegRecord(legLine("SID", "BANGR9", "RW16L", "BANGR")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	for _, n := range []int{1, 37, 39} {
		f := make([]string, n)
		if _, err := splitLegRecord(strings.Join(f, ",")); !errors.Is(err, ErrFieldCount) {
			t.Errorf("%d fields: expected ErrFieldCount, got %v", n, err)
		}
	}
}

func TestDecodeLeg(t *testing.T) {
	f := []string{
		"SID:020", "5", "BANGR9", "RW16L",
		"SEA  ", "K1", "D", " ", "V  Y",
		"R", "031", "CF", "Y",
		"SEA", "K1", "D", " ",
		"002500", "1604", "0090", "2581", "T010",
		"B", "FL180", "12500", "18000",
		"-", "250", "-300", "050",
		"BANGR", "K1", "E", "A",
		"1", "2", "3", "4",
	}
	r, err := splitLegRecord(strings.Join(f, ","))
	if err != nil {
		t.Fatal(err)
	}

	runways := map[string]Runway{"16L": {Id: "16L"}}
	leg := r.leg("KSEA", runways, newFakeNavData())

	if leg.RouteType != '5' || leg.Procedure != "BANGR9" || leg.Transition != "RW16L" {
		t.Errorf("route type/procedure/transition = %q/%q/%q", leg.RouteType, leg.Procedure, leg.Transition)
	}
	if leg.Fix.Id != "SEA" || leg.Fix.Type != FixVORDME || leg.Fix.Area != EnrouteArea {
		t.Errorf("main fix = %+v", leg.Fix)
	}
	if leg.FixDescription != "V  Y" {
		t.Errorf("fix description = %q", leg.FixDescription)
	}
	if leg.TurnDirection != TurnRight || !approxEqual(leg.RNP, 0.3) || leg.PathTerminator != "CF" || !leg.Overfly {
		t.Errorf("turn %v, RNP %f, path terminator %q, overfly %v", leg.TurnDirection, leg.RNP, leg.PathTerminator, leg.Overfly)
	}
	if leg.RecommendedNavaid.Id != "SEA" || !leg.RecommendedNavaid.Navaid.Valid() {
		t.Errorf("recommended navaid = %+v", leg.RecommendedNavaid)
	}
	if !approxEqual(leg.ArcRadius, 2.5) || !approxEqual(leg.Theta, 160.4) || !approxEqual(leg.Rho, 9) {
		t.Errorf("arc radius %f, theta %f, rho %f", leg.ArcRadius, leg.Theta, leg.Rho)
	}
	if !approxEqual(leg.OutboundCourse, 258.1) || leg.OutboundCourseTrue {
		t.Errorf("outbound course %f true %v", leg.OutboundCourse, leg.OutboundCourseTrue)
	}
	if !approxEqual(leg.OutboundDistance, 1) || !leg.OutboundIsTime {
		t.Errorf("outbound distance %f time %v", leg.OutboundDistance, leg.OutboundIsTime)
	}
	if leg.AltitudeRestriction != AltitudeWithin || leg.Altitude1 != 18000 || leg.Altitude2 != 12500 || leg.TransitionAltitude != 18000 {
		t.Errorf("altitude restriction %v %d %d, transition altitude %d", leg.AltitudeRestriction,
			leg.Altitude1, leg.Altitude2, leg.TransitionAltitude)
	}
	if leg.SpeedRestriction != SpeedAtOrBelow || leg.SpeedLimit != 250 {
		t.Errorf("speed restriction %v %d", leg.SpeedRestriction, leg.SpeedLimit)
	}
	if !approxEqual(leg.VerticalAngle, -3) || leg.VerticalScale != 50 {
		t.Errorf("vertical angle %f scale %d", leg.VerticalAngle, leg.VerticalScale)
	}
	if leg.CenterFix.Id != "BANGR" || leg.CenterFix.Type != FixWaypoint {
		t.Errorf("center fix = %+v", leg.CenterFix)
	}
	if leg.MultipleCode != '1' || leg.GNSSIndicator != '2' || leg.RouteQualifier != [2]byte{'3', '4'} {
		t.Errorf("multiple code %q, GNSS %q, qualifiers %q", leg.MultipleCode, leg.GNSSIndicator, leg.RouteQualifier)
	}
}

func TestDecodeBlankLeg(t *testing.T) {
	f := legFields("APPCH")
	f[3] = "   "
	r, err := splitLegRecord(strings.Join(f, ","))
	if err != nil {
		t.Fatal(err)
	}

	leg := r.leg("KSEA", nil, newFakeNavData())
	if leg.Transition != "NONE" {
		t.Errorf("blank transition should be NONE, got %q", leg.Transition)
	}
	if leg.Fix.Resolved() || leg.RecommendedNavaid.Resolved() || leg.CenterFix.Resolved() {
		t.Errorf("blank fixes should not resolve: %+v", leg)
	}
	if leg.TurnDirection != TurnEither || leg.RNP != 0 || leg.Overfly || leg.AltitudeRestriction != AltitudeAt ||
		leg.SpeedRestriction != SpeedAt || leg.Altitude1 != 0 {
		t.Errorf("blank columns should decode to defaults: %+v", leg)
	}
}

func TestDecodeLegUnresolvedFixKeepsId(t *testing.T) {
	r, err := splitLegRecord(legLine("STAR", "CHINS5", "ALL", "NOWHR"))
	if err != nil {
		t.Fatal(err)
	}
	leg := r.leg("KSEA", nil, newFakeNavData())
	if leg.Fix.Resolved() || leg.Fix.Id != "NOWHR" || leg.Fix.Region != "K1" {
		t.Errorf("unresolved fix = %+v", leg.Fix)
	}
}
