// cmd/navshell/commands.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"cmp"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/math"
	"github.com/mmp/navdb/navdata"
	"github.com/mmp/navdb/util"

	"github.com/goforj/godump"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

var (
	ErrNotInDatabase        = errors.New("Not in data base")
	ErrInvalidRunway        = errors.New("Invalid runway")
	ErrUnknownProcedure     = errors.New("Unknown procedure")
	ErrInvalidProcedureKind = errors.New("Procedure kind must be sid, star or appch")
	ErrNoHolds              = errors.New("No published holds")
)

// Command is a shell command. Args gives the names of its arguments for
// the usage message; optional ones are bracketed.
type Command interface {
	Args() []string
	Help() string
	Run(sh *Shell, args []string) error
}

func makeCommands() map[string]Command {
	return map[string]Command{
		"help":   &HelpCommand{},
		"quit":   &QuitCommand{},
		"set":    &SetCommand{},
		"vars":   &VarsCommand{},
		"poinfo": &PointInfoCommand{},
		"rwys":   &RunwaysCommand{},
		"dump":   &DumpCommand{},
		"stats":  &StatsCommand{},

		"getpath":   &AirwayPathCommand{},
		"getaapath": &AirwayPathCommand{toAirway: true},
		"holdinfo":  &HoldInfoCommand{},

		"allsid":   &AllProceduresCommand{kind: sidProcedure},
		"allstar":  &AllProceduresCommand{kind: starProcedure},
		"allappch": &AllProceduresCommand{kind: approachProcedure},

		"getsid":   &LegsCommand{kind: sidProcedure},
		"getstar":  &LegsCommand{kind: starProcedure},
		"getappch": &LegsCommand{kind: approachProcedure},

		"lssid":  &ProceduresForRunwayCommand{kind: sidProcedure},
		"lsstar": &ProceduresForRunwayCommand{kind: starProcedure},

		"lsrwysid":  &ProcedureTransitionsCommand{kind: sidProcedure, runways: true},
		"lsrwystar": &ProcedureTransitionsCommand{kind: starProcedure, runways: true},

		"lssidtrans":  &ProcedureTransitionsCommand{kind: sidProcedure},
		"lsstartrans": &ProcedureTransitionsCommand{kind: starProcedure},
	}
}

///////////////////////////////////////////////////////////////////////////
// procedureKind

type procedureKind int

const (
	sidProcedure procedureKind = iota
	starProcedure
	approachProcedure
)

func (k procedureKind) String() string {
	return [...]string{"SID", "STAR", "Approach"}[k]
}

func parseProcedureKind(s string) (procedureKind, error) {
	switch strings.ToLower(s) {
	case "sid":
		return sidProcedure, nil
	case "star":
		return starProcedure, nil
	case "appch", "approach":
		return approachProcedure, nil
	default:
		return 0, fmt.Errorf("%s: %w", s, ErrInvalidProcedureKind)
	}
}

// transitionKey maps a runway given on the command line (e.g. "RW9L")
// to the form used for the airport's runway transitions.
func transitionKey(ap *aviation.Airport, trans string) string {
	trans = strings.ToUpper(trans)
	if _, ok := ap.Runway(trans); ok {
		return aviation.NormalizeRunwayId(trans)
	}
	return trans
}

func (k procedureKind) legs(ap *aviation.Airport, name, trans string) []aviation.Leg {
	name, trans = strings.ToUpper(name), transitionKey(ap, trans)
	switch k {
	case sidProcedure:
		return ap.SID(name, trans)
	case starProcedure:
		return ap.STAR(name, trans)
	default:
		return ap.Approach(name, trans)
	}
}

// all returns the airport's procedures of the kind along with their
// transitions.
func (k procedureKind) all(ap *aviation.Airport) map[string][]string {
	switch k {
	case sidProcedure:
		return ap.AllSIDs()
	case starProcedure:
		return ap.AllSTARs()
	default:
		m := make(map[string][]string)
		for _, name := range ap.AllApproaches() {
			m[name] = ap.TransitionsForApproach(name)
		}
		return m
	}
}

func (k procedureKind) forRunway(ap *aviation.Airport, rwy string) []string {
	if k == sidProcedure {
		return ap.SIDsForRunway(rwy)
	}
	return ap.STARsForRunway(rwy)
}

func (k procedureKind) transitions(ap *aviation.Airport, name string, runways bool) []string {
	name = strings.ToUpper(name)
	switch {
	case k == sidProcedure && runways:
		return ap.RunwaysForSID(name)
	case k == sidProcedure:
		return ap.TransitionsForSID(name)
	case runways:
		return ap.RunwaysForSTAR(name)
	default:
		return ap.TransitionsForSTAR(name)
	}
}

///////////////////////////////////////////////////////////////////////////
// General commands

type HelpCommand struct{}

func (*HelpCommand) Args() []string { return []string{"[command]"} }
func (*HelpCommand) Help() string   { return "Lists the available commands or describes one of them." }
func (*HelpCommand) Run(sh *Shell, args []string) error {
	if len(args) == 1 {
		name := strings.ToLower(args[0])
		cmd, ok := sh.commands[name]
		if !ok {
			return fmt.Errorf("%s: %w", name, ErrUnknownCommand)
		}
		fmt.Fprintf(sh.w, "%s\n    %s\n", usage(name, cmd), cmd.Help())
		return nil
	}

	for _, name := range util.SortedMapKeys(sh.commands) {
		fmt.Fprintf(sh.w, "%-32s %s\n", usage(name, sh.commands[name]), sh.commands[name].Help())
	}
	return nil
}

type QuitCommand struct{}

func (*QuitCommand) Args() []string { return nil }
func (*QuitCommand) Help() string   { return "Exits the shell." }
func (*QuitCommand) Run(sh *Shell, args []string) error {
	sh.quit = true
	return nil
}

type SetCommand struct{}

func (*SetCommand) Args() []string { return []string{"name", "value"} }
func (*SetCommand) Help() string {
	return "Sets a variable; " + varAircraftLat + " and " + varAircraftLon + " give the aircraft position."
}
func (*SetCommand) Run(sh *Shell, args []string) error {
	return sh.Set(args[0], args[1])
}

type VarsCommand struct{}

func (*VarsCommand) Args() []string { return nil }
func (*VarsCommand) Help() string   { return "Prints the variables in the order they were first set." }
func (*VarsCommand) Run(sh *Shell, args []string) error {
	for _, k := range sh.vars.Keys() {
		v, _ := sh.Var(k)
		fmt.Fprintf(sh.w, "%s = %s\n", k, v)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Navigation data commands

type PointInfoCommand struct{}

func (*PointInfoCommand) Args() []string { return []string{"id"} }
func (*PointInfoCommand) Help() string {
	return "Prints the airport or all of the fixes with the given identifier with their bearing and distance " +
		"from the aircraft, closest first."
}
func (*PointInfoCommand) Run(sh *Shell, args []string) error {
	id := strings.ToUpper(args[0])

	if ap, ok := sh.db.Airports().Airport(id); ok {
		fmt.Fprintf(sh.w, "%s airport %s elevation %d ft, %d runway ends%s\n", ap.ICAO,
			ap.Location.DMSString(), ap.ElevationFt, len(ap.Runways), magVar(ap.Location, float32(ap.ElevationFt)))
		return nil
	}

	wps := sh.db.Navaids().Lookup(id)
	if len(wps) == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotInDatabase)
	}

	pos := sh.aircraftPosition()
	slices.SortStableFunc(wps, func(a, b aviation.Waypoint) int {
		return cmp.Compare(math.NMDistance2LL(pos, a.Location), math.NMDistance2LL(pos, b.Location))
	})

	for _, wp := range wps {
		fmt.Fprintf(sh.w, "%-5s %-7s %s %s", wp.Id, wp.Type, wp.Area, wp.Location.DMSString())
		if nav, ok := sh.db.Navaids().Navaid(wp.Navaid); ok {
			fmt.Fprintf(sh.w, " %s", nav.FrequencyString())
		}
		fmt.Fprintf(sh.w, " %03d/%.1fnm%s %s\n", int(math.Heading2LL(pos, wp.Location)),
			math.NMDistance2LL(pos, wp.Location), magVar(wp.Location, 0), sh.db.Navaids().Description(wp))
	}
	return nil
}

// magVar returns the current magnetic variation at p for display, or an
// empty string if it's outside the magnetic model's range.
func magVar(p math.Point2LL, altFt float32) string {
	v, err := math.MagneticVariation(p, altFt, time.Now())
	if err != nil {
		return ""
	}
	return ", var " + math.MagVarString(v)
}

type RunwaysCommand struct{}

func (*RunwaysCommand) Args() []string { return []string{"icao"} }
func (*RunwaysCommand) Help() string   { return "Prints the airport's runways." }
func (*RunwaysCommand) Run(sh *Shell, args []string) error {
	ap, err := sh.airport(args[0])
	if err != nil {
		return err
	}

	rwys := ap.Runways()
	for _, id := range util.SortedMapKeys(rwys) {
		rwy := rwys[id]
		fmt.Fprintf(sh.w, "RW%-4s %s %5d ft", id, rwy.Threshold.DMSString(), rwy.ThresholdElevationFt)
		if rwy.LandingSystemId != "" {
			fmt.Fprintf(sh.w, " %s", rwy.LandingSystemId)
		}
		fmt.Fprintln(sh.w)
	}
	return nil
}

type AirwayPathCommand struct {
	// toAirway is set if the path ends where the airway meets another.
	toAirway bool
}

func (c *AirwayPathCommand) Args() []string {
	return []string{"airway", "from", util.Select(c.toAirway, "next_airway", "to")}
}
func (c *AirwayPathCommand) Help() string {
	if c.toAirway {
		return "Prints the fixes and flight levels along an airway from a fix to where it meets the next airway."
	}
	return "Prints the fixes and flight levels along an airway between two fixes."
}
func (c *AirwayPathCommand) Run(sh *Shell, args []string) error {
	awy, from, to := strings.ToUpper(args[0]), strings.ToUpper(args[1]), strings.ToUpper(args[2])

	var path []navdata.AirwayPoint
	var err error
	if c.toAirway {
		path, err = sh.db.Airways().PathToAirway(awy, from, to)
	} else {
		path, err = sh.db.Airways().Path(awy, from, to)
	}
	if err != nil {
		return err
	}

	for _, p := range path {
		fmt.Fprintf(sh.w, "%s %d %d\n", p.Id, p.Altitudes.Base, p.Altitudes.Top)
	}
	return nil
}

type HoldInfoCommand struct{}

func (*HoldInfoCommand) Args() []string { return []string{"id"} }
func (*HoldInfoCommand) Help() string {
	return "Prints the holding patterns published at all of the fixes with the given identifier."
}
func (*HoldInfoCommand) Run(sh *Shell, args []string) error {
	id := strings.ToUpper(args[0])
	wps := sh.db.Navaids().Lookup(id)
	if len(wps) == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotInDatabase)
	}

	n := 0
	for _, wp := range wps {
		for _, h := range sh.db.Holds().Holds(wp) {
			fmt.Fprintf(sh.w, "%-5s %-7s %s %s inbound %05.1f %s turns, %s legs%s\n", wp.Id, wp.Type, wp.Area,
				wp.Region, h.InboundCourse, h.Turn, holdLegString(h), holdLimitsString(h))
			n++
		}
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNoHolds)
	}
	return nil
}

func holdLegString(h navdata.Hold) string {
	if h.LegNM != 0 {
		return fmt.Sprintf("%.1fnm", h.LegNM)
	}
	return fmt.Sprintf("%.1fmin", h.LegMinutes)
}

// holdLimitsString returns the hold's altitude and speed limits; zero
// means there's no limit.
func holdLimitsString(h navdata.Hold) string {
	var s string
	switch {
	case h.MinAltitudeFt != 0 && h.MaxAltitudeFt != 0:
		s += fmt.Sprintf(", %d-%d ft", h.MinAltitudeFt, h.MaxAltitudeFt)
	case h.MinAltitudeFt != 0:
		s += fmt.Sprintf(", at or above %d ft", h.MinAltitudeFt)
	case h.MaxAltitudeFt != 0:
		s += fmt.Sprintf(", at or below %d ft", h.MaxAltitudeFt)
	}
	if h.SpeedKts != 0 {
		s += fmt.Sprintf(", max %d kts", h.SpeedKts)
	}
	return s
}

///////////////////////////////////////////////////////////////////////////
// Procedure commands

type AllProceduresCommand struct {
	kind procedureKind
}

func (*AllProceduresCommand) Args() []string { return []string{"icao"} }
func (c *AllProceduresCommand) Help() string {
	return "Prints all of the airport's " + c.kind.String() + "s and their transitions."
}
func (c *AllProceduresCommand) Run(sh *Shell, args []string) error {
	ap, err := sh.airport(args[0])
	if err != nil {
		return err
	}

	all := c.kind.all(ap)
	for _, name := range util.SortedMapKeys(all) {
		fmt.Fprintf(sh.w, "%s: %s\n", c.kind, name)
		for _, trans := range all[name] {
			fmt.Fprintf(sh.w, "    Transition %s\n", trans)
		}
	}
	return nil
}

type LegsCommand struct {
	kind procedureKind
}

func (*LegsCommand) Args() []string { return []string{"icao", "name", "transition"} }
func (c *LegsCommand) Help() string {
	return "Prints the fixes and path terminators of a " + c.kind.String() + " transition."
}
func (c *LegsCommand) Run(sh *Shell, args []string) error {
	ap, err := sh.airport(args[0])
	if err != nil {
		return err
	}

	legs := c.kind.legs(ap, args[1], args[2])
	if len(legs) == 0 {
		return fmt.Errorf("%s %s %s: %w", c.kind, args[1], args[2], ErrUnknownProcedure)
	}
	for _, leg := range legs {
		fmt.Fprintf(sh.w, "%s %s\n", leg.Fix.Id, leg.PathTerminator)
	}
	return nil
}

type ProceduresForRunwayCommand struct {
	kind procedureKind
}

func (*ProceduresForRunwayCommand) Args() []string { return []string{"icao", "runway"} }
func (c *ProceduresForRunwayCommand) Help() string {
	return "Lists the " + c.kind.String() + "s that serve the runway."
}
func (c *ProceduresForRunwayCommand) Run(sh *Shell, args []string) error {
	ap, err := sh.airport(args[0])
	if err != nil {
		return err
	}

	names := c.kind.forRunway(ap, args[1])
	if len(names) == 0 {
		return fmt.Errorf("%s: %w", args[1], ErrInvalidRunway)
	}
	fmt.Fprintln(sh.w, strings.Join(names, " "))
	return nil
}

// ProcedureTransitionsCommand lists either the runway or the enroute
// transitions of a SID or STAR.
type ProcedureTransitionsCommand struct {
	kind    procedureKind
	runways bool
}

func (*ProcedureTransitionsCommand) Args() []string { return []string{"icao", "name"} }
func (c *ProcedureTransitionsCommand) Help() string {
	return "Lists the " + util.Select(c.runways, "runways", "enroute transitions") + " of a " +
		c.kind.String() + "."
}
func (c *ProcedureTransitionsCommand) Run(sh *Shell, args []string) error {
	ap, err := sh.airport(args[0])
	if err != nil {
		return err
	}

	trans := c.kind.transitions(ap, args[1], c.runways)
	if len(trans) == 0 {
		return fmt.Errorf("%s %s: %w", c.kind, args[1], ErrUnknownProcedure)
	}
	fmt.Fprintln(sh.w, strings.Join(trans, " "))
	return nil
}

type DumpCommand struct{}

func (*DumpCommand) Args() []string { return []string{"icao", "kind", "name", "transition"} }
func (*DumpCommand) Help() string {
	return "Prints all of the fields of a procedure transition's legs; kind is sid, star or appch."
}
func (*DumpCommand) Run(sh *Shell, args []string) error {
	kind, err := parseProcedureKind(args[1])
	if err != nil {
		return err
	}
	ap, err := sh.airport(args[0])
	if err != nil {
		return err
	}

	legs := kind.legs(ap, args[2], args[3])
	if len(legs) == 0 {
		return fmt.Errorf("%s %s %s: %w", kind, args[2], args[3], ErrUnknownProcedure)
	}
	godump.Fdump(sh.w, legs)
	return nil
}

type StatsCommand struct{}

func (*StatsCommand) Args() []string { return nil }
func (*StatsCommand) Help() string {
	return "Prints the navigation data's size and the process's resource usage."
}
func (*StatsCommand) Run(sh *Shell, args []string) error {
	nav := sh.db.Navaids()
	fmt.Fprintf(sh.w, "Navigation data: %d fix identifiers, %d navaids, %d airports, %d load errors\n",
		nav.NumIdents(), nav.NumNavaids(), sh.db.Airports().Len(), len(sh.db.LoadErrors()))
	fmt.Fprintf(sh.w, "Airways: %d, holds at %d fixes\n", sh.db.Airways().NumAirways(), sh.db.Holds().NumFixes())
	fmt.Fprintf(sh.w, "Procedure cache: %d airports %v\n", sh.procs.Len(), sh.procs.Cached())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Fprintf(sh.w, "Go heap: %d MB in use, %d MB from the system, %d GCs\n",
		m.HeapAlloc/(1024*1024), m.Sys/(1024*1024), m.NumGC)

	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Fprintf(sh.w, "System memory: %d of %d MB used (%.1f%%)\n",
			vm.Used/(1024*1024), vm.Total/(1024*1024), vm.UsedPercent)
	} else {
		sh.lg.Warnf("VirtualMemory: %v", err)
	}
	if pct, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(pct) > 0 {
		fmt.Fprintf(sh.w, "CPU: %.1f%%\n", pct[0])
	} else if err != nil {
		sh.lg.Warnf("cpu.Percent: %v", err)
	}
	return nil
}
